package domain

import (
	"errors"
	"testing"
)

func latteMenu() *Menu {
	return &Menu{
		MenuID: "coffee",
		Name:   "Coffee",
		Items: []Item{
			{
				ItemID: "latte",
				Name:   "Latte",
				Price:  400,
				Options: []Option{
					{Name: "Size", Choices: []Choice{{Name: "Small", PriceDelta: 0}, {Name: "Large", PriceDelta: 150}}},
					{Name: "Syrup", Choices: []Choice{{Name: "Vanilla", PriceDelta: 50}, {Name: "Large", PriceDelta: 999}}},
				},
			},
			{ItemID: "espresso", Name: "Espresso", Price: 250},
		},
	}
}

func TestMenu_FindItem(t *testing.T) {
	m := latteMenu()

	it, err := m.FindItem("espresso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name != "Espresso" {
		t.Errorf("got %q, want Espresso", it.Name)
	}

	if _, err := m.FindItem("mocha"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("FindItem(mocha) err = %v, want ErrItemNotFound", err)
	}
}

func TestItem_ChoiceDelta(t *testing.T) {
	it, _ := latteMenu().FindItem("latte")

	tests := []struct {
		name   string
		choice string
		want   Money
		wantOK bool
	}{
		{"match in first option", "Large", 150, true},
		{"match in second option", "Vanilla", 50, true},
		{"zero delta still matches", "Small", 0, true},
		{"unmatched", "Oat Milk", 0, false},
		{"option name is not a choice", "Size", 0, false},
		{"case sensitive", "large", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := it.ChoiceDelta(tt.choice)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ChoiceDelta(%q) = (%d, %v), want (%d, %v)", tt.choice, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestItem_ChoiceDelta_NoOptions(t *testing.T) {
	it, _ := latteMenu().FindItem("espresso")
	if got, ok := it.ChoiceDelta("Large"); got != 0 || ok {
		t.Errorf("ChoiceDelta on item without options = (%d, %v), want (0, false)", got, ok)
	}
}
