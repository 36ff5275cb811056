package shiftmanager

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/period"

	perr "opstats/internal/platform/errors"
)

const listingHTML = `
<table>
<tr><th>h</th></tr>
<tr>
<td><a href="/Managment/ShiftManagment/Order?orderUUId=d1e9e9189a2e4a5691b38e0e8a0ef0a1">open</a></td>
<td> 42-7 </td><td>x</td><td>x</td><td>599₽</td><td>x</td><td>x</td><td>Доставка</td>
</tr>
</table>`

func TestParseOrdersBrief(t *testing.T) {
	t.Parallel()

	got, err := ParseOrdersBrief(listingHTML)
	if err != nil {
		t.Fatalf("ParseOrdersBrief: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows: got %d", len(got))
	}
	want := OrderBrief{
		ID:     uuid.MustParse("d1e9e918-9a2e-4a56-91b3-8e0e8a0ef0a1"),
		Number: "42-7",
		Price:  599,
		Type:   "Доставка",
	}
	if got[0] != want {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}
}

func TestParseOrdersBriefEmptyPage(t *testing.T) {
	t.Parallel()

	got, err := ParseOrdersBrief("<table><tr><th>h</th></tr></table>")
	if err != nil {
		t.Fatalf("ParseOrdersBrief: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %+v", got)
	}
}

const detailHTML = `
<span id="orderNumber">42-7</span>
<div class="headerDepartment">Москва 4-1</div>
<table>
<tr><td>Тип:</td><td>Доставка</td></tr>
<tr><td>Курьер:</td><td>Сидоров С.</td></tr>
</table>
<div id="history">
<table>
<tr><th>t</th><th>m</th><th>u</th></tr>
<tr><td>01.03.2024 12:00:00</td><td>Order has been accepted</td><td></td></tr>
<tr><td>01.03.2024 12:20:05</td><td>Закрыт чек на возврат</td><td>Кассир К.</td></tr>
<tr><td>01.03.2024 12:21:00</td><td>Order has been rejected</td><td>Менеджер М.</td></tr>
</table>
</div>`

func TestParseOrderDetail(t *testing.T) {
	t.Parallel()

	brief := OrderBrief{
		ID:     uuid.MustParse("d1e9e918-9a2e-4a56-91b3-8e0e8a0ef0a1"),
		Number: "42-7",
		Price:  599,
		Type:   "Доставка",
	}
	got, err := ParseOrderDetail(detailHTML, brief)
	if err != nil {
		t.Fatalf("ParseOrderDetail: %v", err)
	}

	if got.UnitName != "Москва 4-1" || got.Number != "42-7" {
		t.Fatalf("header: %+v", got)
	}
	if got.CourierName != "Сидоров С." {
		t.Fatalf("courier: %q", got.CourierName)
	}
	if got.RejectedByUserName != "Менеджер М." {
		t.Fatalf("rejected by: %q", got.RejectedByUserName)
	}

	wantCreated := time.Date(2024, 3, 1, 12, 0, 0, 0, period.Moscow)
	if !got.CreatedAt.Equal(wantCreated) {
		t.Fatalf("created at: %v", got.CreatedAt)
	}
	wantCanceled := time.Date(2024, 3, 1, 12, 21, 0, 0, period.Moscow)
	if !got.CanceledAt.Equal(wantCanceled) {
		t.Fatalf("canceled at: %v", got.CanceledAt)
	}
	if got.ReceiptPrintedAt == nil {
		t.Fatal("receipt printed at: nil")
	}
	wantPrinted := time.Date(2024, 3, 1, 12, 20, 5, 0, period.Moscow)
	if !got.ReceiptPrintedAt.Equal(wantPrinted) {
		t.Fatalf("receipt printed at: %v", *got.ReceiptPrintedAt)
	}
}

func TestParseOrderDetailWithoutRefundReceipt(t *testing.T) {
	t.Parallel()

	html := `
<span id="orderNumber">42-8</span>
<div class="headerDepartment">Москва 4-1</div>
<table><tr><td>Тип:</td><td>Самовывоз</td></tr></table>
<div id="history">
<table>
<tr><th>t</th><th>m</th><th>u</th></tr>
<tr><td>01.03.2024 12:00:00</td><td>Order has been accepted</td><td></td></tr>
<tr><td>01.03.2024 12:30:00</td><td>Order has been rejected</td><td></td></tr>
</table>
</div>`

	got, err := ParseOrderDetail(html, OrderBrief{ID: uuid.New()})
	if err != nil {
		t.Fatalf("ParseOrderDetail: %v", err)
	}
	if got.ReceiptPrintedAt != nil {
		t.Fatalf("receipt printed at must stay nil, got %v", *got.ReceiptPrintedAt)
	}
	if got.CourierName != "" || got.RejectedByUserName != "" {
		t.Fatalf("optional fields: %+v", got)
	}
}

func TestParseOrderDetailIncompleteHistory(t *testing.T) {
	t.Parallel()

	html := `
<span id="orderNumber">42-9</span>
<div class="headerDepartment">Москва 4-1</div>
<div id="history"><table><tr><th>t</th></tr></table></div>`

	_, err := ParseOrderDetail(html, OrderBrief{ID: uuid.New()})
	if !perr.IsCode(err, perr.ErrorCodeParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}
