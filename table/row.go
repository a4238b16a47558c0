package table

import (
	"strings"

	"github.com/pkg/errors"

	"btreedb/column"
)

// Row is the fixed-width record this engine stores, keyed by ID.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Validate enforces the row invariants spec.md assigns to the parser
// layer: id is unsigned by construction, username/email must fit their
// bounded fields. Table.Insert and SerializeRow both call it; the REPL's
// prepare step checks the same length bounds itself before building a
// Row.
func (r Row) Validate() error {
	if len(r.Username) > column.UsernameMaxLen {
		return errors.Errorf("username %q exceeds %d bytes", r.Username, column.UsernameMaxLen)
	}
	if len(r.Email) > column.EmailMaxLen {
		return errors.Errorf("email %q exceeds %d bytes", r.Email, column.EmailMaxLen)
	}
	return nil
}

// SerializeRow writes r into dst (which must be exactly RowSize bytes)
// using the column layout in column.RowSchema: id little-endian, then
// username's bytes followed by a zero terminator, then email's bytes
// followed by a zero terminator. Trailing bytes within each field are
// left as whatever dst already held (spec leaves them unspecified);
// callers that need a clean page zero it first.
func SerializeRow(r Row, dst []byte) error {
	if uint32(len(dst)) != RowSize {
		return errors.Errorf("SerializeRow: dst length %d, want %d", len(dst), RowSize)
	}
	if err := r.Validate(); err != nil {
		return errors.Wrap(err, "SerializeRow")
	}

	id := column.RowSchema[0]
	dst[id.Offset] = byte(r.ID)
	dst[id.Offset+1] = byte(r.ID >> 8)
	dst[id.Offset+2] = byte(r.ID >> 16)
	dst[id.Offset+3] = byte(r.ID >> 24)

	writeBoundedString(dst, column.RowSchema[1], r.Username)
	writeBoundedString(dst, column.RowSchema[2], r.Email)
	return nil
}

func writeBoundedString(dst []byte, col column.Column, s string) {
	field := dst[col.Offset : col.Offset+col.Size]
	n := copy(field, s)
	field[n] = 0 // terminator; bytes past it are unspecified
}

// DeserializeRow is the inverse of SerializeRow: deserialize(serialize(r)) == r
// for every valid r.
func DeserializeRow(src []byte) (Row, error) {
	if uint32(len(src)) != RowSize {
		return Row{}, errors.Errorf("DeserializeRow: src length %d, want %d", len(src), RowSize)
	}

	id := column.RowSchema[0]
	idVal := uint32(src[id.Offset]) |
		uint32(src[id.Offset+1])<<8 |
		uint32(src[id.Offset+2])<<16 |
		uint32(src[id.Offset+3])<<24

	return Row{
		ID:       idVal,
		Username: readBoundedString(src, column.RowSchema[1]),
		Email:    readBoundedString(src, column.RowSchema[2]),
	}, nil
}

func readBoundedString(src []byte, col column.Column) string {
	field := src[col.Offset : col.Offset+col.Size]
	if i := strings.IndexByte(string(field), 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
