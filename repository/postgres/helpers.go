package postgres

import "encoding/json"

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func unmarshalMap(data []byte) map[string]string {
	if len(data) == 0 {
		return map[string]string{}
	}
	out := map[string]string{}
	_ = json.Unmarshal(data, &out)
	return out
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
