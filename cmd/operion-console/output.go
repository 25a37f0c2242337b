package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

// printResult writes v in the format picked by --output. YAML goes through
// JSON first so both formats share the API's field names.
func printResult(command *cli.Command, v any) error {
	return render(command.Root().Writer, command.String("output"), v)
}

func render(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	switch format {
	case formatJSON, "":
		_, err = fmt.Fprintln(w, string(data))

		return err
	case formatYAML:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", errUnknownFormat, format)
	}
}
