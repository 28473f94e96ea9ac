package configs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// SaveTOML encodes data to filePath, prefixed with an optional comment header.
func SaveTOML(filePath string, data any, header string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			fmt.Fprintf(&buf, "# %s\n", line)
		}
		buf.WriteByte('\n')
	}
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}

	return os.WriteFile(filePath, buf.Bytes(), 0644)
}

// LoadTOML decodes filePath into data and rejects keys data does not declare.
func LoadTOML(filePath string, data any) error {
	meta, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}
