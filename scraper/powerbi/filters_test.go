package powerbi

import (
	"errors"
	"testing"
)

func TestClassifyDashboardLoad(t *testing.T) {
	tests := []struct {
		overlayGone bool
		wallPresent bool
		wantLogin   bool
		wantErr     bool
	}{
		{overlayGone: true, wallPresent: false, wantLogin: false, wantErr: false},
		{overlayGone: true, wallPresent: true, wantLogin: true, wantErr: true},
		// A slow identity-provider redirect can keep the overlay timing out
		// while the wall is already up; the recoverable condition must win.
		{overlayGone: false, wallPresent: true, wantLogin: true, wantErr: true},
		{overlayGone: false, wallPresent: false, wantLogin: false, wantErr: true},
	}

	for _, tt := range tests {
		err := classifyDashboardLoad(tt.overlayGone, tt.wallPresent)
		if (err != nil) != tt.wantErr {
			t.Errorf("classifyDashboardLoad(%v, %v) error = %v; wantErr %v",
				tt.overlayGone, tt.wallPresent, err, tt.wantErr)
			continue
		}
		if got := errors.Is(err, ErrLoginRequired); got != tt.wantLogin {
			t.Errorf("classifyDashboardLoad(%v, %v) login = %v; want %v",
				tt.overlayGone, tt.wallPresent, got, tt.wantLogin)
		}
	}
}

func TestItemsNeedingClickSkipsSelected(t *testing.T) {
	wanted := []string{"SUP NORTE", "SUP SUL", "SUP LESTE"}
	current := []slicerItem{
		{Title: "SUP NORTE", Selected: true},
		{Title: "SUP SUL", Selected: false},
		{Title: "SUP LESTE", Selected: false},
	}

	clicks := itemsNeedingClick(wanted, current)
	if len(clicks) != 2 || clicks[0] != "SUP SUL" || clicks[1] != "SUP LESTE" {
		t.Errorf("itemsNeedingClick = %v; want [SUP SUL SUP LESTE]", clicks)
	}
}

func TestItemsNeedingClickIdempotent(t *testing.T) {
	wanted := []string{"SUP NORTE", "SUP SUL"}
	current := []slicerItem{
		{Title: "SUP NORTE", Selected: true},
		{Title: "SUP SUL", Selected: true},
	}

	// Applying the same filter twice must not toggle anything off.
	if clicks := itemsNeedingClick(wanted, current); len(clicks) != 0 {
		t.Errorf("itemsNeedingClick on fully applied filter = %v; want none", clicks)
	}
}

func TestItemsNeedingClickFreshSlicer(t *testing.T) {
	wanted := []string{"NORTE"}
	current := []slicerItem{{Title: "NORTE", Selected: false}}

	clicks := itemsNeedingClick(wanted, current)
	if len(clicks) != 1 || clicks[0] != "NORTE" {
		t.Errorf("itemsNeedingClick = %v; want [NORTE]", clicks)
	}
}
