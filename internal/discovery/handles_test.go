package discovery

import "testing"

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"veganeats", "veganeats", true},
		{"@VeganEats", "veganeats", true},
		{"  chef.maria_la ", "chef.maria_la", true},
		{"https://www.instagram.com/VeganEats/", "veganeats", true},
		{"reel", "", false},
		{"has space", "", false},
		{"", "", false},
		{"toolong_toolong_toolong_toolong_toolong_toolong_toolong", "", false},
		{"https://example.com/veganeats", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeHandle(tt.in, "instagram.com")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeHandle(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHandleFromURL(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.instagram.com/veganeats/", "veganeats", true},
		{"https://instagram.com/veganeats?hl=en", "veganeats", true},
		{"instagram.com/veganeats", "veganeats", true},
		{"https://m.instagram.com/VeganEats/reels/", "veganeats", true},
		{"https://www.instagram.com/reel/Cabc123/", "", false},
		{"https://www.instagram.com/p/Cabc123/", "", false},
		{"https://www.instagram.com/explore/tags/vegan/", "", false},
		{"https://www.instagram.com/", "", false},
		{"https://notinstagram.com/veganeats", "", false},
		{"https://www.tiktok.com/@veganeats", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := HandleFromURL(tt.url, "instagram.com")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("HandleFromURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}
