// Command schemagen emits a JSON Schema describing the wire message and
// replay metadata shapes, for tooling (dashboards, replay inspectors)
// that wants to validate captured traffic without linking this module.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"lockstepd/proto"
	"lockstepd/replay"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schemagen: missing -out path")
	}

	schema, err := buildSchema()
	if err != nil {
		log.Fatalf("schemagen: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("schemagen: marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schemagen: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schemagen: write schema: %v", err)
	}
}

func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: false,
		DoNotReference:             true,
	}

	messageTypes := []struct {
		name  string
		value any
	}{
		{"PlayerReady", proto.PlayerReady{}},
		{"GameStart", proto.GameStart{}},
		{"CommandMsg", proto.CommandMsg{}},
		{"CommandAck", proto.CommandAck{}},
		{"SyncHash", proto.SyncHash{}},
		{"Ping", proto.Ping{}},
		{"Pong", proto.Pong{}},
		{"ReplayMetadata", replay.Metadata{}},
	}

	variants := make([]*jsonschema.Schema, 0, len(messageTypes))
	for _, mt := range messageTypes {
		sub := reflector.ReflectFromType(reflect.TypeOf(mt.value))
		if sub == nil {
			return nil, fmt.Errorf("failed to reflect schema for %s", mt.name)
		}
		sub.Version = ""
		sub.Title = mt.name
		variants = append(variants, sub)
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Lockstep Wire Messages",
		Description: "Command-plane wire messages and replay file metadata exchanged by the lockstep network service.",
		OneOf:       variants,
	}

	return root, nil
}
