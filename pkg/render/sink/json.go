package sink

import (
	"bytes"

	tio "github.com/matzehuels/treemap/pkg/io"
)

// RenderJSON returns the indented layout document.
func RenderJSON(l tio.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := tio.WriteLayoutDoc(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
