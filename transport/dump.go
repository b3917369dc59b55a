package transport

import (
	"encoding/hex"
	"fmt"
)

// dump writes a titled hex dump of buf when dumping is enabled.
func (t *Transport) dump(title string, buf []byte) {
	if t.config.Dump == nil {
		return
	}
	fmt.Fprintf(t.config.Dump, "%s (%d):\n%s", title, len(buf), hex.Dump(buf))
}
