package actiondetect

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	// ErrDuplicateLabel is returned when two class ids map to the same label
	// name
	ErrDuplicateLabel = errors.New("duplicate label name")
	// ErrInvalidLabel is returned for empty label names or negative class ids
	ErrInvalidLabel = errors.New("invalid label")
)

// LabelRegistry is the bidirectional mapping between the class ids a Model
// was trained with and their action names.  It is read only once created and
// safe for concurrent use.
type LabelRegistry struct {
	// ids holds the class ids in ascending order
	ids      []int
	idToName map[int]string
	nameToID map[string]int
}

// NewLabelRegistry creates a LabelRegistry from the given class id to label
// name mapping
func NewLabelRegistry(labels map[int]string) (*LabelRegistry, error) {

	r := &LabelRegistry{
		ids:      make([]int, 0, len(labels)),
		idToName: make(map[int]string, len(labels)),
		nameToID: make(map[string]int, len(labels)),
	}

	for id, name := range labels {

		if id < 0 {
			return nil, fmt.Errorf("%w: negative class id %d", ErrInvalidLabel, id)
		}

		if name == "" {
			return nil, fmt.Errorf("%w: empty name for class id %d", ErrInvalidLabel, id)
		}

		if prev, ok := r.nameToID[name]; ok {
			return nil, fmt.Errorf("%w: %q used by class ids %d and %d",
				ErrDuplicateLabel, name, min(prev, id), max(prev, id))
		}

		r.ids = append(r.ids, id)
		r.idToName[id] = name
		r.nameToID[name] = id
	}

	sort.Ints(r.ids)

	return r, nil
}

// NewLabelRegistryFromList creates a LabelRegistry where each label's class
// id is its index in the list
func NewLabelRegistryFromList(labels []string) (*LabelRegistry, error) {

	m := make(map[int]string, len(labels))

	for i, name := range labels {
		m[i] = name
	}

	return NewLabelRegistry(m)
}

// Name returns the label name of the class id
func (r *LabelRegistry) Name(id int) (string, bool) {
	name, ok := r.idToName[id]
	return name, ok
}

// ID returns the class id of the label name
func (r *LabelRegistry) ID(name string) (int, bool) {
	id, ok := r.nameToID[name]
	return id, ok
}

// IDs returns all class ids in ascending order
func (r *LabelRegistry) IDs() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}

// Labels returns all label names ordered by class id
func (r *LabelRegistry) Labels() []string {

	out := make([]string, len(r.ids))

	for i, id := range r.ids {
		out[i] = r.idToName[id]
	}

	return out
}

// Len returns the number of labels
func (r *LabelRegistry) Len() int {
	return len(r.ids)
}

// IDsExcluding returns the name to class id mapping for all labels not named
// in excluded.  Names in excluded that are not registered are ignored.
func (r *LabelRegistry) IDsExcluding(excluded ...string) map[string]int {

	skip := toSet(excluded)
	out := make(map[string]int, len(r.ids))

	for name, id := range r.nameToID {
		if _, ok := skip[name]; ok {
			continue
		}
		out[name] = id
	}

	return out
}

// ActiveClasses returns the class ids to request from the Detector once the
// excluded labels are removed.  The ids are returned in ascending order.
func ActiveClasses(r *LabelRegistry, excluded ...string) []int {

	allowed := r.IDsExcluding(excluded...)
	out := make([]int, 0, len(allowed))

	for _, id := range r.ids {
		if _, ok := allowed[r.idToName[id]]; ok {
			out = append(out, id)
		}
	}

	return out
}

func toSet(names []string) map[string]struct{} {

	set := make(map[string]struct{}, len(names))

	for _, n := range names {
		set[n] = struct{}{}
	}

	return set
}

// LoadLabels reads the labels used to train the Model from the given text file.
// It should contain one label per line, the line number being the class id.
func LoadLabels(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	// drop trailing blank lines
	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}

	return labels, nil
}
