package text

import (
	"reflect"
	"testing"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
		want    []string
	}{
		{
			name:    "business keyword passes",
			phrases: []string{"経費を精算する"},
			want:    []string{"経費を精算する"},
		},
		{
			name:    "greeting is dropped",
			phrases: []string{"おはようございます", "領収書を経理に渡して"},
			want:    []string{"領収書を経理に渡して"},
		},
		{
			name:    "small talk is dropped even when long",
			phrases: []string{"今日は本当に良い天気で仕事がはかどりますよ"},
			want:    []string{},
		},
		{
			name:    "keyword-less short phrase is dropped",
			phrases: []string{"もっていく"},
			want:    []string{},
		},
		{
			name:    "keyword-less long phrase passes on length",
			phrases: []string{"あれをあそこにもっていく"},
			want:    []string{"あれをあそこにもっていく"},
		},
		{
			name:    "duplicates keep first occurrence",
			phrases: []string{"経費を精算する", "報告書を提出する", "経費を精算する"},
			want:    []string{"経費を精算する", "報告書を提出する"},
		},
		{
			name:    "business keyword beats non-business keyword",
			phrases: []string{"お疲れさまです経費を精算する"},
			want:    []string{"お疲れさまです経費を精算する"},
		},
		{
			name:    "empty input",
			phrases: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.phrases)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.phrases, got, tt.want)
			}
		})
	}
}

func TestIsCompound(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		actions []string
		want    bool
	}{
		{
			name:    "two actions",
			input:   "経費を精算する",
			actions: []string{"a", "b"},
			want:    true,
		},
		{
			name:    "comma in text",
			input:   "申請書を提出し、承認する",
			actions: []string{"申請書を提出する"},
			want:    true,
		},
		{
			name:    "period in text",
			input:   "精算する。",
			actions: []string{"精算する"},
			want:    true,
		},
		{
			name:    "trigger marker counts as compound",
			input:   "終わったら報告する",
			actions: []string{"終わったら報告する"},
			want:    true,
		},
		{
			name:    "conjunction counts as compound",
			input:   "精算するまた報告する",
			actions: []string{"精算するまた報告する"},
			want:    true,
		},
		{
			name:    "single plain action",
			input:   "発注する",
			actions: []string{"発注する"},
			want:    false,
		},
		{
			name:    "no actions no markers",
			input:   "経費を精算する",
			actions: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCompound(tt.input, tt.actions)
			if got != tt.want {
				t.Errorf("IsCompound(%q, %v) = %v, want %v", tt.input, tt.actions, got, tt.want)
			}
		})
	}
}

func TestFilterVersion(t *testing.T) {
	if FilterVersion != "biz_v1" {
		t.Errorf("FilterVersion = %q, want biz_v1", FilterVersion)
	}
}
