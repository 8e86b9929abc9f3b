package pr

import (
	"fmt"
	"testing"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

func TestPageSlice(t *testing.T) {
	requests := make([]model.PurchaseRequest, 5)
	for i := range requests {
		requests[i].PRNumber = fmt.Sprintf("KCPL-26-%04d", i+1)
	}

	tests := []struct {
		name           string
		page, pageSize int
		wantFirst      string
		wantLen        int
	}{
		{"第一页", 1, 2, "KCPL-26-0001", 2},
		{"中间页", 2, 2, "KCPL-26-0003", 2},
		{"末页不足一页", 3, 2, "KCPL-26-0005", 1},
		{"越界页返回空页", 4, 2, "", 0},
		{"页大小超过总量", 1, 20, "KCPL-26-0001", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageSlice(requests, tt.page, tt.pageSize)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].PRNumber != tt.wantFirst {
				t.Errorf("first = %s, want %s", got[0].PRNumber, tt.wantFirst)
			}
		})
	}
}
