package detector

import (
	"context"
	"testing"

	"go-screen-perception/pkg/models"
)

func TestStaticAccessibility_ReturnsCopy(t *testing.T) {
	source := []models.AccessibilityObservation{
		{Role: "AXButton", Title: "Submit", Enabled: true},
	}
	scanner := NewStaticAccessibility(source)

	got, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Submit" {
		t.Fatalf("Scan = %+v", got)
	}

	got[0].Title = "mutated"
	again, _ := scanner.Scan(context.Background())
	if again[0].Title != "Submit" {
		t.Error("callers must not be able to mutate the scanner's backing data")
	}
}

func TestStaticMenu_HonorsCancellation(t *testing.T) {
	scanner := NewStaticMenu([]models.MenuBarItem{{Title: "File", Type: models.MenuTypeApp}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := scanner.ScanMenuBar(ctx); err == nil {
		t.Error("expected an error from a cancelled context")
	}

	items, err := scanner.ScanMenuBar(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("ScanMenuBar = %v items, err %v", len(items), err)
	}
}
