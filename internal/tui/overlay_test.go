package tui

import "testing"

func TestOverlayControllerSingleSlot(t *testing.T) {
	var o overlayController
	if o.IsOpen() {
		t.Fatal("expected closed controller initially")
	}
	o.Open(overlayTaskDetail)
	if !o.IsOpen() || o.Kind() != overlayTaskDetail {
		t.Fatalf("expected task detail open, got %v", o.Kind())
	}
	// Opening another overlay replaces the slot wholly.
	o.Open(overlayConfirm)
	if o.Kind() != overlayConfirm {
		t.Fatalf("expected confirm to replace detail, got %v", o.Kind())
	}
	o.Close()
	if o.IsOpen() || o.Kind() != overlayNone {
		t.Fatalf("expected closed slot after Close, got %v", o.Kind())
	}
}

func TestConfirmSpecDefaultsApplyPerField(t *testing.T) {
	spec := confirmSpec{}.withDefaults()
	if spec.Title != "Confirm" || spec.Message != "Are you sure?" ||
		spec.ConfirmText != "Yes" || spec.CancelText != "Cancel" {
		t.Fatalf("unexpected defaults: %#v", spec)
	}

	partial := confirmSpec{Title: "Delete task", CancelText: "Keep"}.withDefaults()
	if partial.Title != "Delete task" {
		t.Fatalf("expected provided title kept, got %q", partial.Title)
	}
	if partial.CancelText != "Keep" {
		t.Fatalf("expected provided cancel text kept, got %q", partial.CancelText)
	}
	if partial.Message != "Are you sure?" || partial.ConfirmText != "Yes" {
		t.Fatalf("expected missing fields defaulted independently: %#v", partial)
	}
}
