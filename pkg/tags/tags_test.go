package tags

import (
	"reflect"
	"testing"
)

func TestDeriver(t *testing.T) {
	d := NewDeriver()
	tests := []struct {
		name string
		got  Tags
		want Tags
	}{
		{
			name: "master",
			got:  d.Master("Bobby Shaftoe"),
			want: Tags{Artist: "News Choir", Genre: "Chorus", Album: "Practice: Bobby Shaftoe", Title: "Bobby Shaftoe"},
		},
		{
			name: "solo",
			got:  d.Solo("Soprano", "Bobby Shaftoe"),
			want: Tags{Artist: "News Choir", Genre: "Chorus", Album: "Practice: Bobby Shaftoe", Title: "Soprano (Solo) - Bobby Shaftoe"},
		},
		{
			name: "dominant",
			got:  d.Dominant("Alto", "Bobby Shaftoe"),
			want: Tags{Artist: "News Choir", Genre: "Chorus", Album: "Practice: Bobby Shaftoe", Title: "Alto (Dominant) - Bobby Shaftoe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %+v; want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestDeriverEmpty(t *testing.T) {
	d := &Deriver{Genre: "Gospel"}
	got := d.Master("Amazing Grace")
	want := Tags{Genre: "Gospel", Title: "Amazing Grace"}
	if got != want {
		t.Fatalf("Master() = %+v; want %+v", got, want)
	}
	fields := got.Fields()
	wantFields := [][2]string{{"genre", "Gospel"}, {"title", "Amazing Grace"}}
	if !reflect.DeepEqual(fields, wantFields) {
		t.Fatalf("Fields() = %v; want %v", fields, wantFields)
	}
}

func TestDeriverAlbum(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"Spring Concert", "Spring Concert"},
		{"Practice: %s", "Practice: Amazing Grace"},
		{"100% %s", "100% Amazing Grace"},
		{"%s (%d)", "Amazing Grace (%d)"},
		{"%s / %s", "Amazing Grace / Amazing Grace"},
	}
	for _, tt := range tests {
		d := &Deriver{AlbumFormat: tt.format}
		if got := d.Master("Amazing Grace").Album; got != tt.want {
			t.Errorf("Master().Album with %q = %q; want %q", tt.format, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		source, part, policy string
		want                 string
	}{
		{"scores/Bobby Shaftoe.mscz", "", "", "scores/Bobby Shaftoe.mp3"},
		{"scores/Bobby Shaftoe.mscz", "Soprano", "solo", "scores/Bobby Shaftoe-Soprano-solo.mp3"},
		{"scores/Bobby Shaftoe.mscz", "Soprano 1/2", "dominant", "scores/Bobby Shaftoe-Soprano_1_2-dominant.mp3"},
		{"Song.mscz", "Tenor-Bass", "solo", "Song-Tenor_Bass-solo.mp3"},
	}
	for _, tt := range tests {
		if got := FileName(tt.source, tt.part, tt.policy, ".mp3"); got != tt.want {
			t.Errorf("FileName(%q, %q, %q) = %q; want %q", tt.source, tt.part, tt.policy, got, tt.want)
		}
	}
}
