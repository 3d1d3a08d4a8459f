package domain

import (
	"encoding/json"
	"testing"
)

func TestStockUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Stock
	}{
		{"number", `7`, Stock{Quantity: 7}},
		{"fractional number truncates", `7.9`, Stock{Quantity: 7}},
		{"numeric string", `"12"`, Stock{Quantity: 12}},
		{"infinite marker", `"infinite"`, Stock{Infinite: true}},
		{"null", `null`, Stock{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Stock
			if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("unmarshal %s = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestStockUnmarshalRejectsUnknownStrings(t *testing.T) {
	var got Stock
	if err := json.Unmarshal([]byte(`"plenty"`), &got); err == nil {
		t.Fatal("expected error for unrecognised stock string")
	}
}

func TestPhotoURL(t *testing.T) {
	item := Item{Photo: &Photo{Image: PhotoImage{URL: "https://feed.example.com/images/abc.jpg"}}}
	if got := item.PhotoURL(); got != "https://feed.example.com/images/abc.jpg" {
		t.Fatalf("unexpected photo url: %q", got)
	}
	if got := (Item{}).PhotoURL(); got != "" {
		t.Fatalf("expected empty url for missing photo, got %q", got)
	}
}

func TestFirstImageSrc(t *testing.T) {
	src := "https://shop.example.com/media/abc.jpg"
	product := Product{Images: []ProductImage{{Src: &src}}}
	if got := product.FirstImageSrc(); got != src {
		t.Fatalf("unexpected image src: %q", got)
	}
	if got := (Product{}).FirstImageSrc(); got != "" {
		t.Fatalf("expected empty src for no images, got %q", got)
	}
	if got := (Product{Images: []ProductImage{{Src: nil}}}).FirstImageSrc(); got != "" {
		t.Fatalf("expected empty src for null image, got %q", got)
	}
}
