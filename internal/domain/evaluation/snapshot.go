package evaluation

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DecodeSnapshot reads a SummaryInput document. Unknown keys are rejected so
// typos do not silently drop records.
func DecodeSnapshot(r io.Reader) (SummaryInput, error) {
	var in SummaryInput
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return SummaryInput{}, fmt.Errorf("evaluation: decode snapshot: %w", err)
	}
	for i := range in.SelfRecords {
		if in.SelfRecords[i].EvaluationType == "" {
			in.SelfRecords[i].EvaluationType = TypeSelf
		}
	}
	return in, nil
}

func ReadSnapshotFile(path string) (SummaryInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return SummaryInput{}, fmt.Errorf("evaluation: open snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f)
}
