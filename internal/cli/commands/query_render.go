package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/result"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

func renderResult(r *output.Renderer, res *result.Result) error {
	switch r.Mode() {
	case output.ModeJSON:
		return renderResultJSON(r, res)
	case output.ModeYAML:
		return renderResultYAML(r, res)
	}

	cols := res.DeduplicatedColumnNames()
	if res.RowCount() == 0 && r.Mode() != output.ModeCSV {
		r.Println("(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range res.Rows() {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = formatValue(v)
		}
		t.AppendRow(out)
	}

	switch r.Mode() {
	case output.ModeCSV:
		t.RenderCSV()
		return nil
	case output.ModeMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
	}
	r.Printf("(%d rows)\n", res.RowCount())
	return nil
}

func renderResultJSON(r *output.Renderer, res *result.Result) error {
	rows := res.Maps()
	if rows == nil {
		rows = []wire.Object{}
	}
	return r.JSON(rows)
}

func renderResultYAML(r *output.Renderer, res *result.Result) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, obj := range res.Maps() {
		seq.Content = append(seq.Content, yamlNode(obj))
	}
	return r.YAML(seq)
}

// yamlNode builds a node tree so object fields keep their order.
func yamlNode(v wire.Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch t := v.(type) {
	case nil, wire.Null:
		return scalar("!!null", "null")
	case wire.Bool:
		return scalar("!!bool", strconv.FormatBool(bool(t)))
	case wire.Int:
		return scalar("!!int", strconv.FormatInt(int64(t), 10))
	case wire.BigInt:
		return scalar("!!int", t.V.String())
	case wire.Float:
		return scalar("!!float", strconv.FormatFloat(float64(t), 'g', -1, 64))
	case wire.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range t {
			seq.Content = append(seq.Content, yamlNode(elem))
		}
		return seq
	case wire.Object:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range t {
			m.Content = append(m.Content, scalar("!!str", f.Name), yamlNode(f.Value))
		}
		return m
	}
	return scalar("!!str", formatValue(v))
}

func formatValue(v wire.Value) string {
	switch t := v.(type) {
	case nil, wire.Null:
		return "NULL"
	case wire.Text:
		return string(t)
	case wire.Bool:
		return strconv.FormatBool(bool(t))
	case wire.Int:
		return strconv.FormatInt(int64(t), 10)
	case wire.BigInt:
		return t.V.String()
	case wire.Float:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case wire.Bytes:
		return `\x` + hex.EncodeToString(t)
	case wire.Time:
		return t.UTC().Format(wire.TimeLayout)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
