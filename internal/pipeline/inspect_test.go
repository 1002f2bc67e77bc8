package pipeline

import "testing"

func TestInspectMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  SourceStats
	}{
		{
			name:  "empty",
			input: "",
			want:  SourceStats{},
		},
		{
			name:  "headings only",
			input: "# A\n\n## B\n\nSetext\n======\n",
			want:  SourceStats{Headings: 3, Lines: 6},
		},
		{
			name:  "one table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			want:  SourceStats{Tables: 1, Lines: 3},
		},
		{
			name:  "two tables and a heading",
			input: "# Data\n\n| a |\n|---|\n| 1 |\n\ntext\n\n| b |\n|---|\n| 2 |",
			want:  SourceStats{Headings: 1, Tables: 2, Lines: 11},
		},
		{
			name:  "pipe row without delimiter row is not a table",
			input: "| a | b |\n| 1 | 2 |\n",
			want:  SourceStats{Lines: 2},
		},
		{
			name:  "table inside code fence ignored",
			input: "```\n| a |\n|---|\n```\n",
			want:  SourceStats{Lines: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InspectMarkdown(tt.input); got != tt.want {
				t.Errorf("InspectMarkdown() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
