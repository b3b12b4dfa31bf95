package deck

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	aidj "github.com/Blackmvmba88/ai-dj"
)

// ReadProject reads a project from r and makes it the current deck state.
// The file may be YAML or JSON; JSON is tried first as it is a stricter
// format. The reader is closed in all cases. If r is an *os.File, its name
// becomes the current file path.
func (m *Model) ReadProject(r io.ReadCloser) {
	b, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		m.AddAlert(Alert{Name: "ReadProject", Priority: Error,
			Message: fmt.Sprintf("reading project: %v", err)})
		return
	}
	if err := m.UnmarshalProject(b); err != nil {
		m.AddAlert(Alert{Name: "ReadProject", Priority: Error,
			Message: "the file is neither valid JSON or YAML"})
		return
	}
	if f, ok := r.(*os.File); ok {
		m.filePath = f.Name()
	}
	m.changedSinceSave = false
}

// MarshalProject returns the current project as YAML, used for plugin state
// chunks; the file paths go through ReadProject and WriteProject instead.
func (m *Model) MarshalProject() []byte {
	b, err := yaml.Marshal(m.Project())
	if err != nil {
		return nil
	}
	return b
}

// UnmarshalProject restores the deck from a project chunk, accepting both
// YAML and JSON.
func (m *Model) UnmarshalProject(b []byte) error {
	var p aidj.Project
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return fmt.Errorf("unmarshaling project failed as JSON (%v) and as YAML (%v)", errJSON, errYaml)
		}
	}
	m.SetProject(p)
	return nil
}

// WriteProject writes the current project to w and closes it. YAML is the
// native format; a .json file path gets JSON instead. On success the deck is
// marked saved.
func (m *Model) WriteProject(w io.WriteCloser) {
	path := m.filePath
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var b []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err = json.Marshal(m.Project())
	} else {
		b, err = yaml.Marshal(m.Project())
	}
	if err != nil {
		w.Close()
		m.AddAlert(Alert{Name: "WriteProject", Priority: Error,
			Message: fmt.Sprintf("marshaling project: %v", err)})
		return
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		m.AddAlert(Alert{Name: "WriteProject", Priority: Error,
			Message: fmt.Sprintf("writing project: %v", err)})
		return
	}
	if err := w.Close(); err != nil {
		m.AddAlert(Alert{Name: "WriteProject", Priority: Error,
			Message: fmt.Sprintf("closing project file: %v", err)})
		return
	}
	m.filePath = path
	m.changedSinceSave = false
}

// SaveProject writes the project back to its current file path.
func (m *Model) SaveProject() {
	if m.filePath == "" {
		m.AddAlert(Alert{Name: "WriteProject", Priority: Warning,
			Message: "the project has no file path yet"})
		return
	}
	f, err := os.Create(m.filePath)
	if err != nil {
		m.AddAlert(Alert{Name: "WriteProject", Priority: Error,
			Message: fmt.Sprintf("creating project file: %v", err)})
		return
	}
	m.WriteProject(f)
}
