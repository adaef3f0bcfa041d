package authz

import "testing"

func TestValidCode(t *testing.T) {
	valid := []string{"customers.view", "requests.approve", "n8n.trigger_sync", "reports.export-csv"}
	for _, code := range valid {
		if !ValidCode(code) {
			t.Fatalf("expected %q to be valid", code)
		}
	}
	invalid := []string{"", "view", "Customers.View", "a.b.c", "customers.", ".view", "customers view"}
	for _, code := range invalid {
		if ValidCode(code) {
			t.Fatalf("expected %q to be invalid", code)
		}
	}
}

func TestFallbackDescriptor(t *testing.T) {
	d := FallbackDescriptor("customers.view")
	if d.Name != "View Customers" {
		t.Fatalf("unexpected name %q", d.Name)
	}
	if d.Description != "Can view customers" {
		t.Fatalf("unexpected description %q", d.Description)
	}
	if d.Category != "customers" || d.Action != "view" {
		t.Fatalf("unexpected split %q/%q", d.Category, d.Action)
	}
}

func TestFallbackDescriptorHumanizesSeparators(t *testing.T) {
	d := FallbackDescriptor("service_requests.bulk_close")
	if d.Name != "Bulk Close Service Requests" {
		t.Fatalf("unexpected name %q", d.Name)
	}
}

func TestFallbackDescriptorWithoutDot(t *testing.T) {
	d := FallbackDescriptor("legacy_export")
	if d.Category != "legacy_export" || d.Action != "" {
		t.Fatalf("unexpected split %q/%q", d.Category, d.Action)
	}
	if d.Name == "" {
		t.Fatalf("even dotless codes must stay displayable")
	}
}
