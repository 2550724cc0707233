package train

import (
	"math"
	"testing"

	"github.com/canteenhub/predictkit/core"
)

func order(userID string, dishes ...string) Order {
	items := make([]OrderItem, 0, len(dishes))
	for _, d := range dishes {
		items = append(items, OrderItem{DishID: d, Quantity: 1})
	}
	return Order{UserID: userID, Items: items}
}

func TestTrain_InsufficientData(t *testing.T) {
	trainer := &Trainer{}

	orders := make([]Order, 0, 9)
	for i := 0; i < 9; i++ {
		orders = append(orders, order("u1", "rice"))
	}

	model, summary, err := trainer.Train(orders)
	if err == nil {
		t.Fatal("expected error for 9 orders, got nil")
	}
	if !core.IsInsufficientData(err) {
		t.Fatalf("expected INSUFFICIENT_DATA, got %v", err)
	}
	if model != nil {
		t.Fatal("model must be nil on insufficient data")
	}
	if summary.OrdersCount != 9 {
		t.Fatalf("summary.OrdersCount = %d, want 9", summary.OrdersCount)
	}

	// 恰好达到阈值时训练成功
	orders = append(orders, order("u1", "rice"))
	model, _, err = trainer.Train(orders)
	if err != nil {
		t.Fatalf("10 orders should train, got %v", err)
	}
	if model == nil {
		t.Fatal("expected model for 10 orders")
	}
}

func TestTrain_MatrixAggregation(t *testing.T) {
	trainer := &Trainer{MinOrders: 1}

	orders := []Order{
		{UserID: "u1", Items: []OrderItem{
			{DishID: "rice", Quantity: 2},
			{DishID: "rice", Quantity: 3},
			{DishID: "tea"}, // 缺省份数按 1
		}},
		{UserID: "u1", Items: []OrderItem{{DishID: "rice", Quantity: 1}}},
		{UserID: " u2 ", Items: []OrderItem{{DishID: " rice ", Quantity: -5}}},
		{UserID: "", Items: []OrderItem{{DishID: "ghost", Quantity: 1}}},
	}

	model, summary, err := trainer.Train(orders)
	if err != nil {
		t.Fatal(err)
	}

	if got := model.Interactions["u1"]["rice"]; got != 6 {
		t.Fatalf("u1/rice = %v, want 6 (2+3+1)", got)
	}
	if got := model.Interactions["u1"]["tea"]; got != 1 {
		t.Fatalf("u1/tea = %v, want 1", got)
	}
	// ID 规范化去空白；非正份数按 1
	if got := model.Interactions["u2"]["rice"]; got != 1 {
		t.Fatalf("u2/rice = %v, want 1", got)
	}
	// 空 userID 整单丢弃
	if summary.UsersCount != 2 {
		t.Fatalf("UsersCount = %d, want 2", summary.UsersCount)
	}
	for dish := range model.Interactions["u1"] {
		if dish == "ghost" {
			t.Fatal("order with empty user id must be dropped")
		}
	}
}

func TestPopularDishes_OrderAndTieBreak(t *testing.T) {
	rows := []interaction{
		{userID: "u1", dishID: "noodles", quantity: 8},
		{userID: "u2", dishID: "rice", quantity: 3},
		{userID: "u3", dishID: "rice", quantity: 2},
		{userID: "u1", dishID: "tea", quantity: 5},
		{userID: "u2", dishID: "bun", quantity: 5},
	}

	got := popularDishes(rows, 3)
	// noodles(8) > rice(5)=tea(5)=bun(5)，并列按 ID 升序：bun < rice < tea
	want := []string{"noodles", "bun", "rice"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMineRules_SupportThresholdAndConfidence(t *testing.T) {
	// 三个用户点了 {A, B}，第四个只点了 A
	rows := []interaction{
		{userID: "u1", dishID: "A", quantity: 1},
		{userID: "u1", dishID: "B", quantity: 1},
		{userID: "u2", dishID: "A", quantity: 1},
		{userID: "u2", dishID: "B", quantity: 1},
		{userID: "u3", dishID: "A", quantity: 1},
		{userID: "u3", dishID: "B", quantity: 1},
		{userID: "u4", dishID: "A", quantity: 1},
	}

	rules := mineRules(rows, 3)

	aRules := rules["A"]
	if len(aRules) != 1 {
		t.Fatalf("rules[A] = %v, want one rule", aRules)
	}
	// A 出现在 4 个篮子，A∩B 共现 3 次：confidence(A→B) = 3/4
	if aRules[0].DishID != "B" || math.Abs(aRules[0].Confidence-0.75) > 1e-9 {
		t.Fatalf("rule A→B = %+v, want confidence 0.75", aRules[0])
	}

	bRules := rules["B"]
	if len(bRules) != 1 {
		t.Fatalf("rules[B] = %v, want one rule", bRules)
	}
	// 有向置信度不对称：confidence(B→A) = 3/3 = 1.0
	if bRules[0].DishID != "A" || math.Abs(bRules[0].Confidence-1.0) > 1e-9 {
		t.Fatalf("rule B→A = %+v, want confidence 1.0", bRules[0])
	}
}

func TestMineRules_BelowSupportDropped(t *testing.T) {
	// 只有两个用户共点 {A, B}，低于 minSupport=3
	rows := []interaction{
		{userID: "u1", dishID: "A", quantity: 1},
		{userID: "u1", dishID: "B", quantity: 1},
		{userID: "u2", dishID: "A", quantity: 1},
		{userID: "u2", dishID: "B", quantity: 1},
	}

	rules := mineRules(rows, 3)
	if len(rules) != 0 {
		t.Fatalf("expected no rules below support threshold, got %v", rules)
	}
}

func TestMineRules_QuantityIgnoredInBaskets(t *testing.T) {
	// 同一用户重复点单只算一个篮子成员
	rows := []interaction{
		{userID: "u1", dishID: "A", quantity: 99},
		{userID: "u1", dishID: "A", quantity: 99},
		{userID: "u1", dishID: "B", quantity: 1},
		{userID: "u2", dishID: "A", quantity: 1},
		{userID: "u2", dishID: "B", quantity: 1},
		{userID: "u3", dishID: "A", quantity: 1},
		{userID: "u3", dishID: "B", quantity: 1},
	}

	rules := mineRules(rows, 3)
	if got := rules["B"]; len(got) != 1 || got[0].Confidence != 1.0 {
		t.Fatalf("rules[B] = %v, want single rule with confidence 1.0", got)
	}
}

func TestItemSimilarity_CosineProperties(t *testing.T) {
	matrix := map[string]map[string]float64{
		"u1": {"A": 1, "B": 1},
		"u2": {"A": 1, "B": 1},
		"u3": {"C": 2},
	}

	sim := itemSimilarity(matrix)

	// A 和 B 的用户向量完全一致 → 相似度 1
	if got := sim["A"]["B"]; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("sim(A,B) = %v, want 1.0", got)
	}
	// 对称
	if sim["A"]["B"] != sim["B"]["A"] {
		t.Fatal("similarity must be symmetric")
	}
	// 无共同用户 → 无条目
	if _, ok := sim["A"]["C"]; ok {
		t.Fatal("disjoint dishes must not appear in similarity")
	}
	// 无对角线
	if _, ok := sim["A"]["A"]; ok {
		t.Fatal("self-similarity must be excluded")
	}
}
