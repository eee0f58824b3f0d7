package logging

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

type palette struct {
	Reset, Bold, Red, Blue, Gray string
	BgRed, BgYellow, BgBlue      string
}

var ansiPalette = palette{
	Reset:    "\033[0m",
	Bold:     "\033[1m",
	Red:      "\033[31m",
	Blue:     "\033[34m",
	Gray:     "\033[37m",
	BgRed:    "\033[41m",
	BgYellow: "\033[43m",
	BgBlue:   "\033[44m",
}

func (p palette) forLevel(level string) string {
	switch level {
	case "trace", "debug":
		return p.Gray
	case "info":
		return p.BgBlue
	case "warn":
		return p.BgYellow
	case "error", "fatal", "panic":
		return p.BgRed
	}
	return ""
}

// Writes zerolog JSON lines as human-readable blocks. Entries with errors,
// stack traces, or extra fields are set off with a separator line.
type PrettyZerologWriter struct {
	out io.Writer
	wd  string
	c   palette

	wasLastLogMultiline bool
}

type prettyLogEntry struct {
	Timestamp  string
	Level      string
	Message    string
	Error      string
	StackTrace []interface{}

	OtherFields []prettyField
}

type prettyField struct {
	Name  string
	Value interface{}
}

func NewPrettyZerologWriter() *PrettyZerologWriter {
	w := newPrettyWriter(os.Stderr)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w.c = ansiPalette
	}
	return w
}

func newPrettyWriter(out io.Writer) *PrettyZerologWriter {
	wd, _ := os.Getwd()
	return &PrettyZerologWriter{
		out: out,
		wd:  wd,
	}
}

func (w *PrettyZerologWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	err := json.Unmarshal(p, &fields)
	if err != nil {
		return w.out.Write(p)
	}

	var pretty prettyLogEntry
	for name, val := range fields {
		switch name {
		case zerolog.TimestampFieldName:
			pretty.Timestamp, _ = val.(string)
		case zerolog.LevelFieldName:
			pretty.Level, _ = val.(string)
		case zerolog.MessageFieldName:
			pretty.Message, _ = val.(string)
		case zerolog.ErrorFieldName:
			pretty.Error, _ = val.(string)
		case zerolog.ErrorStackFieldName:
			pretty.StackTrace, _ = val.([]interface{})
		default:
			pretty.OtherFields = append(pretty.OtherFields, prettyField{
				Name:  name,
				Value: val,
			})
		}
	}

	sort.Slice(pretty.OtherFields, func(i, j int) bool {
		return pretty.OtherFields[i].Name < pretty.OtherFields[j].Name
	})

	isMultiline := pretty.Error != "" || pretty.StackTrace != nil || pretty.OtherFields != nil

	var b strings.Builder
	if isMultiline || w.wasLastLogMultiline {
		b.WriteString("---------------------------------------\n")
	}
	if pretty.Timestamp != "" {
		b.WriteString(pretty.Timestamp)
		b.WriteString(" ")
	}
	if pretty.Level != "" {
		b.WriteString(w.c.forLevel(pretty.Level))
		b.WriteString(w.c.Bold)
		b.WriteString(strings.ToUpper(pretty.Level))
		b.WriteString(w.c.Reset)
		b.WriteString(": ")
	}
	b.WriteString(pretty.Message)
	b.WriteString("\n")
	if pretty.Error != "" {
		b.WriteString("  " + w.c.Bold + w.c.Red + "ERROR:" + w.c.Reset + " ")
		b.WriteString(pretty.Error)
		b.WriteString("\n")
	}
	if len(pretty.OtherFields) > 0 {
		b.WriteString("  " + w.c.Bold + w.c.Blue + "Fields:" + w.c.Reset + "\n")
		for _, field := range pretty.OtherFields {
			valuePretty, _ := json.MarshalIndent(field.Value, "    ", "  ")
			b.WriteString("    ")
			b.WriteString(field.Name)
			b.WriteString(": ")
			b.Write(valuePretty)
			b.WriteString("\n")
		}
	}
	if pretty.StackTrace != nil {
		b.WriteString("  " + w.c.Bold + w.c.Blue + "Stack trace:" + w.c.Reset + "\n")
		for _, frame := range pretty.StackTrace {
			frameMap, ok := frame.(map[string]interface{})
			if !ok {
				continue
			}
			file, _ := frameMap["file"].(string)
			function, _ := frameMap["function"].(string)
			line, _ := frameMap["line"].(float64)
			if w.wd != "" {
				file = strings.Replace(file, w.wd, ".", 1)
			}

			b.WriteString("    ")
			b.WriteString(function)
			b.WriteString(" (")
			b.WriteString(file)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(int(line)))
			b.WriteString(")\n")
		}
	}

	w.wasLastLogMultiline = isMultiline

	_, err = w.out.Write([]byte(b.String()))
	return len(p), err
}
