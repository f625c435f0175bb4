package formatter

import "encoding/json"

func (f *Formatter) writeJSON(v interface{}) error {
	encoder := json.NewEncoder(f.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
