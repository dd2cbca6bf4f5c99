package testsupport

import (
	"encoding/json"
	"os"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON document at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// LoadJSONFixture is LoadGolden for input fixtures; the split keeps test
// intent readable at the call site.
func LoadJSONFixture(path string, v any) error {
	return LoadGolden(path, v)
}
