// Package lzw implements the variable-width LZW variant used by GIF image
// data, together with the sub-block framing that carries it.
//
// Codes are packed least-significant-bit first. A stream starts with a
// clear code, code width grows from litWidth+1 up to 12 bits, and the
// encoder emits a clear code when the table is full. Encoder and Decoder
// agree on the exact code at which the width grows, so every stream written
// here is readable by any GIF decoder and vice versa.
//
// Encoder and Decoder state is scoped to one image; create a new value per
// frame.
package lzw
