package store

import (
	"testing"
	"time"

	"github.com/roach88/repledger/internal/model"
)

func TestListMeals_JoinsObligation(t *testing.T) {
	s := createTestStore(t)

	ate := model.MealRecord{ID: "meal-ob-1", Timestamp: testBase, FoodName: "ramen", EstimatedCalories: 600, Confidence: 80, Choice: model.MealAte}
	skipped := model.MealRecord{ID: "meal-2", Timestamp: testBase.Add(time.Hour), FoodName: "donut", EstimatedCalories: 300, Confidence: 90, Choice: model.MealSkipped}
	for _, m := range []model.MealRecord{ate, skipped} {
		if err := s.InsertMeal(ctx(t), m); err != nil {
			t.Fatalf("InsertMeal(%s) failed: %v", m.ID, err)
		}
	}
	mustInsertObligation(t, s, createTestObligation("ob-1", 38))

	meals, err := s.ListMeals(ctx(t), MealFilter{})
	if err != nil {
		t.Fatalf("ListMeals() failed: %v", err)
	}
	if len(meals) != 2 || meals[0].ID != "meal-2" {
		t.Fatalf("expected newest first, got %+v", meals)
	}
	if meals[1].ObligationID != "ob-1" {
		t.Errorf("ate meal obligation = %q, want ob-1", meals[1].ObligationID)
	}
	if meals[0].ObligationID != "" {
		t.Errorf("skipped meal should have no obligation, got %q", meals[0].ObligationID)
	}
}

func TestSumMealCalories_Window(t *testing.T) {
	s := createTestStore(t)
	meals := []model.MealRecord{
		{ID: "m1", Timestamp: testBase, FoodName: "a", EstimatedCalories: 200, Choice: model.MealSkipped},
		{ID: "m2", Timestamp: testBase.Add(time.Hour), FoodName: "b", EstimatedCalories: 150, Choice: model.MealSkipped},
		{ID: "m3", Timestamp: testBase.Add(time.Hour), FoodName: "c", EstimatedCalories: 900, Choice: model.MealAte},
		{ID: "m4", Timestamp: testBase.Add(48 * time.Hour), FoodName: "d", EstimatedCalories: 50, Choice: model.MealSkipped},
	}
	for _, m := range meals {
		if err := s.InsertMeal(ctx(t), m); err != nil {
			t.Fatalf("InsertMeal(%s) failed: %v", m.ID, err)
		}
	}

	total, err := s.SumMealCalories(ctx(t), MealFilter{
		From:   testBase,
		To:     testBase.Add(24 * time.Hour),
		Choice: model.MealSkipped,
	})
	if err != nil {
		t.Fatalf("SumMealCalories() failed: %v", err)
	}
	if total != 350 {
		t.Errorf("total = %d, want 350", total)
	}

	none, _ := s.SumMealCalories(ctx(t), MealFilter{From: testBase.Add(100 * time.Hour)})
	if none != 0 {
		t.Errorf("empty window total = %d, want 0", none)
	}
}

func TestInsertMealWithObligation_Atomic(t *testing.T) {
	s := createTestStore(t)

	meal := model.MealRecord{ID: "meal-ob-1", Timestamp: testBase, FoodName: "ramen", EstimatedCalories: 600, Choice: model.MealAte}
	if err := s.InsertMealWithObligation(ctx(t), meal, createTestObligation("ob-1", 38)); err != nil {
		t.Fatalf("InsertMealWithObligation() failed: %v", err)
	}

	meals, err := s.ListMeals(ctx(t), MealFilter{})
	if err != nil {
		t.Fatalf("ListMeals() failed: %v", err)
	}
	if len(meals) != 1 || meals[0].ObligationID != "ob-1" {
		t.Fatalf("meals = %+v, want one linked to ob-1", meals)
	}

	// A target of zero violates the CHECK constraint, so the meal insert
	// must roll back with it.
	bad := createTestObligation("ob-2", 0)
	meal2 := model.MealRecord{ID: "meal-ob-2", Timestamp: testBase.Add(time.Hour), FoodName: "pizza", EstimatedCalories: 300, Choice: model.MealAte}
	if err := s.InsertMealWithObligation(ctx(t), meal2, bad); err == nil {
		t.Fatal("expected constraint failure")
	}

	meals, _ = s.ListMeals(ctx(t), MealFilter{})
	if len(meals) != 1 {
		t.Errorf("failed insert left %d meals, want 1", len(meals))
	}
	obs, _ := s.ListObligations(ctx(t), ObligationFilter{})
	if len(obs) != 1 {
		t.Errorf("failed insert left %d obligations, want 1", len(obs))
	}
}
