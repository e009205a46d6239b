// Package mathseg splits Markdown text into prose and TeX formula segments.
//
// Scanning happens in two explicit stages:
//
//  1. Block stage: non-overlapping $$...$$ spans become block formulas.
//     Everything else is an untyped text span.
//  2. Inline stage: inside each text span, $...$ pairs that do not cross a
//     newline become inline formulas. The rest is plain text.
//
// Unterminated delimiters are never formulas; they stay in the plain text.
// Concatenating Segment.Source over the output reproduces the input byte for
// byte, so a segmentation can always be undone.
package mathseg
