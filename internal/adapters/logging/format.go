package logging

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// record is one formatted log event.
type record struct {
	time   time.Time
	level  ports.Level
	msg    string
	fields []ports.Field
}

// textLine renders "time [LEVEL] msg k=v". An empty layout omits the time.
func (r record) textLine(layout string, withLevel bool) string {
	var b strings.Builder

	if layout != "" {
		b.WriteString(r.time.Format(layout))
		b.WriteByte(' ')
	}
	if withLevel {
		fmt.Fprintf(&b, "[%s] ", r.level.String())
	}
	b.WriteString(r.msg)

	for _, f := range r.fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
	}
	return b.String()
}

// jsonLine renders the record as a single JSON object.
func (r record) jsonLine(withTime, withLevel bool) (string, error) {
	entry := make(map[string]interface{}, len(r.fields)+3)

	if withTime {
		entry["time"] = r.time.UTC().Format(time.RFC3339)
	}
	if withLevel {
		entry["level"] = r.level.String()
	}
	entry["msg"] = r.msg

	for _, f := range r.fields {
		if err, ok := f.Value.(error); ok {
			entry[f.Key] = err.Error()
			continue
		}
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatValue quotes values that would otherwise break key=value parsing.
func formatValue(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// joinFields returns base followed by extra without aliasing either slice.
func joinFields(base, extra []ports.Field) []ports.Field {
	all := make([]ports.Field, len(base)+len(extra))
	copy(all, base)
	copy(all[len(base):], extra)
	return all
}
