/*
Package html is the default renderer: each node kind has its own template in
templates/, and New fails when a kind is missing one.

Markup carries data-arbor-* attributes that the embedded client runtime
(static/arbor.js) uses to post interactions back and splice the returned
fragment into the page.
*/
package html
