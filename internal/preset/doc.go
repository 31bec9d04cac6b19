// Package preset stores named synth snapshots in a SQLite database.
//
// Preset names are trimmed and normalized to Unicode NFC before they are used as
// keys, so visually identical names typed on different platforms refer to the
// same preset. Bodies are stored in the codec's YAML encoding.
package preset
