package models

import (
	"testing"
)

func TestTask_LabelListRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{name: "empty", labels: nil},
		{name: "single", labels: []string{"Backend"}},
		{name: "ordered", labels: []string{"Bug", "Frontend", "Backend"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			if err := task.SetLabelList(tt.labels); err != nil {
				t.Fatalf("SetLabelList: %v", err)
			}
			got := task.LabelList()
			if len(got) != len(tt.labels) {
				t.Fatalf("LabelList() = %v, want %v", got, tt.labels)
			}
			for i := range got {
				if got[i] != tt.labels[i] {
					t.Errorf("LabelList()[%d] = %q, want %q", i, got[i], tt.labels[i])
				}
			}
		})
	}
}

func TestTask_LabelListMalformed(t *testing.T) {
	task := Task{Labels: "{not json"}
	if got := task.LabelList(); got != nil {
		t.Errorf("LabelList() = %v, want nil for malformed column", got)
	}
}

func TestTask_SetLabelListNilClearsColumn(t *testing.T) {
	task := Task{Labels: `["a"]`}
	if err := task.SetLabelList(nil); err != nil {
		t.Fatalf("SetLabelList(nil): %v", err)
	}
	if task.Labels != "" {
		t.Errorf("Labels = %q, want empty", task.Labels)
	}
}
