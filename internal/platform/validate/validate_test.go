package validate

import (
	"errors"
	"testing"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

type note struct {
	Content string `json:"content" validate:"required,max=5"`
}

type answer struct {
	Traits []string `json:"traits" validate:"max=3,dive,required"`
}

type sheet struct {
	Items []answer `json:"items" validate:"dive"`
}

func TestStructUsesJSONNamesAndMessages(t *testing.T) {
	err := Struct(note{Content: "一二三四五六"}, Messages{"content.max": "太长了"})
	var ve *domainerrs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError got=%v", err)
	}
	if ve.Field != "content" || ve.Rule != "max" || ve.Message != "太长了" {
		t.Fatalf("validation error: got=%+v", ve)
	}
}

func TestStructCountsRunes(t *testing.T) {
	if err := Struct(note{Content: "一二三四五"}, nil); err != nil {
		t.Fatalf("five runes: want=nil got=%v", err)
	}
}

func TestStructNestedIndexesStrippedForLookup(t *testing.T) {
	s := sheet{Items: []answer{{Traits: []string{"a"}}, {Traits: []string{"a", "b", "c", "d"}}}}
	err := Struct(s, Messages{"items.traits.max": "最多3个"})
	var ve *domainerrs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError got=%v", err)
	}
	if ve.Field != "items[1].traits" || ve.Message != "最多3个" {
		t.Fatalf("nested: got=%+v", ve)
	}
}
