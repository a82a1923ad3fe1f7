package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// EncryptionConfig holds the AES-256 keys.
type EncryptionConfig struct {
	// ActiveKey encrypts every Save. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys still decrypt States saved before a key rotation. The
	// next Save re-encrypts them with ActiveKey.
	FallbackKeys [][]byte
}

// Envelope keys of an encrypted State as seen by the store.
const (
	EnvelopeKey = "__encrypted__"
	KeyIDKey    = "__kid__"
)

var (
	// ErrMissingEnvelope is returned when loading a State that was not encrypted.
	ErrMissingEnvelope = errors.New("state is missing encrypted data envelope")
	// ErrDecrypt is returned when no configured key opens the envelope.
	ErrDecrypt = errors.New("state could not be decrypted")
)

type sealer struct {
	id   string
	aead cipher.AEAD
}

type encryptionMiddleware struct {
	next   ports.StateStore
	active sealer
	byID   map[string]sealer
}

// NewEncryptionMiddleware encrypts each State with AES-GCM before it reaches
// the store. The session id is bound as additional data, so an envelope
// copied under another session id fails to open. It panics unless every key
// is 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	active := mustSealer(config.ActiveKey)
	byID := map[string]sealer{active.id: active}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			panic("fallback keys must be 32 bytes (AES-256)")
		}
		s := mustSealer(k)
		if _, ok := byID[s.id]; !ok {
			byID[s.id] = s
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, active: active, byID: byID}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	nonce := make([]byte, m.active.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := m.active.aead.Seal(nonce, nonce, plain, []byte(sessionID))

	return m.next.Save(ctx, sessionID, domain.State{
		EnvelopeKey: base64.StdEncoding.EncodeToString(sealed),
		KeyIDKey:    m.active.id,
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope[EnvelopeKey].(string)
	if !ok {
		// Plain States are refused once encryption is on.
		return nil, ErrMissingEnvelope
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	plain, err := m.open(sealed, sessionID, envelope.String(KeyIDKey))
	if err != nil {
		return nil, err
	}

	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	if state == nil {
		state = domain.NewState()
	}
	return state, nil
}

// open tries the key named by kid first, then every other key. Envelopes
// written without a key id only take the second path.
func (m *encryptionMiddleware) open(sealed []byte, sessionID, kid string) ([]byte, error) {
	if s, ok := m.byID[kid]; ok {
		if plain, err := s.open(sealed, sessionID); err == nil {
			return plain, nil
		}
	}
	for id, s := range m.byID {
		if id == kid {
			continue
		}
		if plain, err := s.open(sealed, sessionID); err == nil {
			return plain, nil
		}
	}
	return nil, ErrDecrypt
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func mustSealer(key []byte) sealer {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	sum := sha256.Sum256(key)
	return sealer{id: hex.EncodeToString(sum[:4]), aead: aead}
}

func (s sealer) open(sealed []byte, sessionID string) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("ciphertext too short")
	}
	return s.aead.Open(nil, sealed[:n], sealed[n:], []byte(sessionID))
}
