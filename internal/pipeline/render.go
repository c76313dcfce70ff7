package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Render serializes the built store in the requested format. YAML rendering
// goes through the generic JSON value so field names stay identical to the
// JSON wire form.
func Render(res *RunResult, format string) ([]byte, error) {
	switch format {
	case "", "json":
		out := make([]byte, 0, len(res.StoreJSON)+1)
		out = append(out, res.StoreJSON...)
		return append(out, '\n'), nil
	case "yaml":
		var generic map[string]any
		if err := json.Unmarshal(res.StoreJSON, &generic); err != nil {
			return nil, fmt.Errorf("reparse store: %w", err)
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteOutputs renders the store to outPath and, when schemaPath is set,
// writes the inferred schema next to it. An empty or "-" outPath writes the
// store to stdout.
func (p *Pipeline) WriteOutputs(res *RunResult, outPath, schemaPath string) error {
	data, err := Render(res, p.cfg.Output.Format)
	if err != nil {
		return err
	}
	if outPath == "" || outPath == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("write store: %w", err)
		}
	} else {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write store: %w", err)
		}
		p.log.Info().Str("path", outPath).Msg("wrote store")
	}

	if schemaPath != "" {
		raw, err := json.MarshalIndent(res.Schema, "", "  ")
		if err != nil {
			return fmt.Errorf("serialize schema: %w", err)
		}
		raw = append(raw, '\n')
		if err := os.WriteFile(schemaPath, raw, 0o644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		p.log.Info().Str("path", schemaPath).Msg("wrote schema")
	}
	return nil
}
