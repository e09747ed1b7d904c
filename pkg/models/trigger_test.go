package models

import "testing"

func TestIsTriggered(t *testing.T) {
	exact := Trigger{Mode: ModeExact, Amount: 3}
	if exact.IsTriggered(2) {
		t.Error("Expected exact trigger to not fire below the threshold")
	}
	if !exact.IsTriggered(3) {
		t.Error("Expected exact trigger to fire at the threshold")
	}
	if exact.IsTriggered(4) {
		t.Error("Expected exact trigger to not fire past the threshold")
	}

	retro := Trigger{Mode: ModeRetroactive, Amount: 3}
	if retro.IsTriggered(2) {
		t.Error("Expected retroactive trigger to not fire below the threshold")
	}
	if !retro.IsTriggered(3) || !retro.IsTriggered(7) {
		t.Error("Expected retroactive trigger to fire at or past the threshold")
	}

	unknown := Trigger{Mode: "sometimes", Amount: 1}
	if unknown.IsTriggered(5) {
		t.Error("Expected unknown mode to never fire")
	}
}

func TestTriggerAppliesTo(t *testing.T) {
	global := Trigger{Category: CategoryAll}
	if !global.AppliesTo("spam") || !global.AppliesTo(CategoryAll) {
		t.Error("Expected global trigger to apply everywhere")
	}

	scoped := Trigger{Category: "spam"}
	if !scoped.AppliesTo("spam") {
		t.Error("Expected scoped trigger to apply to its category")
	}
	if scoped.AppliesTo("toxicity") || scoped.AppliesTo(CategoryAll) {
		t.Error("Expected scoped trigger to not apply outside its category")
	}
}

func TestTriggerValidate(t *testing.T) {
	valid := Trigger{ID: "t1", GuildID: "g1", Kind: TriggerMute, Mode: ModeExact, Amount: 3}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid trigger, got error: %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = 0
	if err := zeroAmount.Validate(); err == nil {
		t.Error("Expected error for zero amount")
	}

	badMode := valid
	badMode.Mode = "sometimes"
	if err := badMode.Validate(); err == nil {
		t.Error("Expected error for unknown mode")
	}

	badKind := valid
	badKind.Kind = "censored"
	if err := badKind.Validate(); err == nil {
		t.Error("Expected error for unknown trigger kind")
	}
}

func TestTriggerKindReprimand(t *testing.T) {
	pairs := map[TriggerKind]ReprimandKind{
		TriggerWarning: KindWarning,
		TriggerNotice:  KindNotice,
		TriggerMute:    KindMute,
		TriggerBan:     KindBan,
		TriggerKick:    KindKick,
	}
	for tk, rk := range pairs {
		got, err := tk.Reprimand()
		if err != nil {
			t.Errorf("Unexpected error for %s: %v", tk, err)
		}
		if got != rk {
			t.Errorf("Expected %s to map to %s, got %s", tk, rk, got)
		}
	}

	if _, err := TriggerKind("censored").Reprimand(); err == nil {
		t.Error("Expected error for unknown trigger kind")
	}
}
