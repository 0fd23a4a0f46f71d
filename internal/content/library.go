// Package content loads the static content shipped with the service: the
// intervention library, glossary, FAQ, data summaries and instruction PDFs.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"epif/internal/models"
)

// ErrNotFound is returned for an unknown instruction document.
var ErrNotFound = errors.New("content not found")

const (
	interventionsPath = "data/interventions.json"
	glossaryPath      = "data/glossary.json"
	faqsPath          = "data/faqs.json"
	summaryDir        = "data/summary"
	overallSummary    = "overall_summary.txt"
	pdfDir            = "pdfs"
)

type GlossaryEntry struct {
	Factor      string `json:"factor"`
	Description string `json:"description"`
}

type Glossary struct {
	RiskFactors    []string        `json:"risk_factors"`
	Limitations    []string        `json:"limitations"`
	Interpretation []GlossaryEntry `json:"interpretation"`
}

type FAQ struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Description string   `json:"description"`
	Items       []string `json:"items,omitempty"`
}

// FAQGroup gathers consecutive FAQs of the same type.
type FAQGroup struct {
	Type      string `json:"type"`
	Questions []FAQ  `json:"questions"`
}

// ProfileSummary is the data summary of one risk class.
type ProfileSummary struct {
	Class int    `json:"class"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Summary struct {
	Overall  string           `json:"overall"`
	Profiles []ProfileSummary `json:"profiles"`
}

// Document is a downloadable instruction file.
type Document struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Library is the loaded content. It is read-only after Load.
type Library struct {
	fsys          fs.FS
	Interventions models.InterventionSet
	Glossary      Glossary
	FAQs          []FAQ
	Summary       Summary
	Documents     []Document
}

// Load reads every content file from fsys. Malformed files, including
// intervention sections with an unknown code, fail the load.
func Load(fsys fs.FS) (*Library, error) {
	lib := &Library{fsys: fsys}

	if err := readJSON(fsys, interventionsPath, &lib.Interventions); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, glossaryPath, &lib.Glossary); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, faqsPath, &lib.FAQs); err != nil {
		return nil, err
	}

	overall, err := fs.ReadFile(fsys, path.Join(summaryDir, overallSummary))
	if err != nil {
		return nil, fmt.Errorf("failed to read overall summary: %w", err)
	}
	lib.Summary.Overall = string(overall)
	for class := 0; class < models.NumClasses; class++ {
		name := path.Join(summaryDir, fmt.Sprintf("cluster_summary_%d.txt", class))
		text, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read summary of class %d: %w", class, err)
		}
		lib.Summary.Profiles = append(lib.Summary.Profiles, ProfileSummary{
			Class: class,
			Label: models.ClassLabel(class),
			Text:  string(text),
		})
	}

	entries, err := fs.ReadDir(fsys, pdfDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list instruction documents: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(path.Ext(e.Name()), ".pdf") {
			continue
		}
		lib.Documents = append(lib.Documents, Document{Name: e.Name(), Title: documentTitle(e.Name())})
	}
	sort.Slice(lib.Documents, func(i, j int) bool { return lib.Documents[i].Name < lib.Documents[j].Name })

	return lib, nil
}

func readJSON(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// documentTitle turns "Short_FES-I_instructions.pdf" into "Short FES-I".
func documentTitle(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.TrimSuffix(base, "_instructions")
	return strings.ReplaceAll(base, "_", " ")
}

// FAQGroups groups FAQs by consecutive type, keeping file order.
func (l *Library) FAQGroups() []FAQGroup {
	var groups []FAQGroup
	for _, f := range l.FAQs {
		if len(groups) == 0 || groups[len(groups)-1].Type != f.Type {
			groups = append(groups, FAQGroup{Type: f.Type})
		}
		last := &groups[len(groups)-1]
		last.Questions = append(last.Questions, f)
	}
	return groups
}

// Document returns the content of an instruction PDF by file name.
func (l *Library) Document(name string) ([]byte, error) {
	for _, d := range l.Documents {
		if d.Name == name {
			return fs.ReadFile(l.fsys, path.Join(pdfDir, d.Name))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
