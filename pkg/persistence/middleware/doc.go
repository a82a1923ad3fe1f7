// Package middleware wraps a ports.StateStore with persistence policies:
// dropping transient keys, enforcing a size budget, masking sensitive values
// and encrypting the stored form.
package middleware
