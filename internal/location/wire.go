package location

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// 文档注释：远端响应结构 { tp, result, msg }
// 背景：result 为“标识 → 名称”的对象，其键顺序即展示顺序，标准 map 解码会丢失顺序，故逐 token 解析。
// 约束：tp 按宽松相等判定（1、"1"、true 均视为成功）；result 为数组时以下标作标识；重复键保留首次位置、取最后的名称。
type response struct {
	tp      int
	options []Option
	msg     string
}

func (r *response) UnmarshalJSON(b []byte) error {
	var raw struct {
		TP     json.RawMessage `json:"tp"`
		Result json.RawMessage `json:"result"`
		Msg    json.RawMessage `json:"msg"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.tp = parseTP(raw.TP)
	r.msg = scalarText(raw.Msg)
	if r.tp != 1 {
		return nil
	}
	opts, err := decodeOptions(raw.Result)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}
	r.options = opts
	return nil
}

func (r *response) toResult() Result {
	if r.tp == 1 {
		return Success{Options: r.options}
	}
	return Failure{Message: r.msg}
}

func parseTP(b json.RawMessage) int {
	s := scalarText(b)
	if s == "true" {
		return 1
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != float64(int(f)) {
		return 0
	}
	return int(f)
}

// scalarText：把 JSON 标量转为展示文字；对象与数组原样返回
func scalarText(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(b)
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return string(b)
}

func decodeOptions(b json.RawMessage) ([]Option, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	var out []Option
	index := map[string]int{}
	add := func(id, label string) {
		if i, ok := index[id]; ok {
			out[i].Label = label
			return
		}
		index[id] = len(out)
		out = append(out, Option{ID: id, Label: label})
	}
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected key %v", kt)
			}
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			add(key, scalarText(v))
		}
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			add(strconv.Itoa(i), scalarText(v))
		}
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
