package generate

import "testing"

func TestExpandNameTemplate(t *testing.T) {
	tests := []struct {
		template string
		entity   string
		want     string
	}{
		{"create_{entity_name}", "OrderItem", "create_order_item"},
		{"Create{EntityName}", "order_item", "CreateOrderItem"},
		{"{EntityName}Repository", "user", "UserRepository"},
		{"put_{entity_name}", "User", "put_user"},
	}

	for _, tt := range tests {
		if got := ExpandNameTemplate(tt.template, tt.entity); got != tt.want {
			t.Errorf("ExpandNameTemplate(%q, %q) = %q, want %q", tt.template, tt.entity, got, tt.want)
		}
	}
}

func TestFormatMethodName(t *testing.T) {
	if got := Python.FormatMethodName("GetUserOrders"); got != "get_user_orders" {
		t.Errorf("python method name = %q", got)
	}
	if got := Go.FormatMethodName("get_user_orders"); got != "GetUserOrders" {
		t.Errorf("go method name = %q", got)
	}
}

func TestLanguageByName(t *testing.T) {
	lang, err := LanguageByName("Python")
	if err != nil || lang != Python {
		t.Fatalf("LanguageByName(Python) = %v, %v", lang, err)
	}
	if _, err := LanguageByName("rust"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestTypeMapper(t *testing.T) {
	tm := NewTypeMapper(Python)

	if got, err := tm.Map("decimal", ""); err != nil || got != "Decimal" {
		t.Errorf("Map(decimal) = %q, %v", got, err)
	}
	if got, err := tm.Map("entity", "order_item"); err != nil || got != "OrderItem" {
		t.Errorf("Map(entity) = %q, %v", got, err)
	}
	if _, err := tm.Map("entity", ""); err == nil {
		t.Error("entity tag without entity_type should fail")
	}
	if _, err := tm.Map("binary", ""); err == nil {
		t.Error("unknown tag should fail")
	}
}
