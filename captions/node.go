package captions

import "encoding/json"

// node is a loosely typed JSON object from the player response. Every reader
// returns ok=false for a missing or mistyped field instead of failing, so one
// malformed entry never poisons its siblings.
type node map[string]json.RawMessage

func (n node) object(key string) (node, bool) {
	raw, ok := n[key]
	if !ok {
		return nil, false
	}
	var out node
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func (n node) objects(key string) ([]node, bool) {
	raw, ok := n[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]node, 0, len(items))
	for _, item := range items {
		var obj node
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			// keep position so callers can skip it
			obj = node{}
		}
		out = append(out, obj)
	}
	return out, true
}

func (n node) str(key string) (string, bool) {
	raw, ok := n[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (n node) boolean(key string) (bool, bool) {
	raw, ok := n[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// runText reads key.runs[0].text, the shape YouTube uses for display names.
func (n node) runText(key string) (string, bool) {
	obj, ok := n.object(key)
	if !ok {
		return "", false
	}
	runs, ok := obj.objects("runs")
	if !ok || len(runs) == 0 {
		return "", false
	}
	return runs[0].str("text")
}

// path walks nested objects.
func (n node) path(keys ...string) (node, bool) {
	cur := n
	for _, k := range keys {
		next, ok := cur.object(k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
