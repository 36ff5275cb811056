package shiftmanager

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"opstats/internal/core/locale"
	"opstats/internal/core/period"

	perr "opstats/internal/platform/errors"
)

const historyTimeLayout = "02.01.2006 15:04:05"

// History messages the shift console renders. The page mixes English
// event names with Russian annotations
const (
	msgAccepted       = "has been accepted"
	msgRejected       = "has been rejected"
	msgRefundReceipt  = "закрыт чек на возврат"
	fieldCourierLabel = "Курьер:"
)

func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, perr.Parsef("parse html: %v", err)
	}
	return doc, nil
}

// ParseOrdersBrief reads one listing page of failed orders. The order
// id hides in each row's link query string
func ParseOrdersBrief(html string) ([]OrderBrief, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var out []OrderBrief
	var rowErr error
	doc.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true
		}
		tds := tr.Find("td")
		if tds.Length() < 8 {
			rowErr = perr.Parsef("orders listing row: want 8 cells, got %d", tds.Length())
			return false
		}

		href, ok := tds.Eq(0).Find("a").Attr("href")
		if !ok {
			rowErr = perr.Parsef("orders listing row: no detail link")
			return false
		}
		rawID := href[strings.LastIndex(href, "=")+1:]
		id, err := uuid.Parse(rawID)
		if err != nil {
			rowErr = perr.Parsef("orders listing row: bad order id %q", rawID)
			return false
		}

		price, err := locale.Int(strings.TrimSpace(tds.Eq(4).Text()))
		if err != nil {
			rowErr = err
			return false
		}

		out = append(out, OrderBrief{
			ID:     id,
			Number: strings.TrimSpace(tds.Eq(1).Text()),
			Price:  price,
			Type:   strings.TrimSpace(tds.Eq(7).Text()),
		})
		return true
	})
	return out, rowErr
}

// ParseOrderDetail assembles a canceled order from its detail page:
// header fields plus a walk over the order's event history
func ParseOrderDetail(html string, brief OrderBrief) (CanceledOrder, error) {
	var out CanceledOrder

	doc, err := parseDoc(html)
	if err != nil {
		return out, err
	}

	number := strings.TrimSpace(doc.Find("span#orderNumber").Text())
	unitName := strings.TrimSpace(doc.Find("div.headerDepartment").Text())
	if number == "" || unitName == "" {
		return out, perr.Parsef("order detail: missing header fields")
	}

	courierName := ""
	doc.Find("table").First().Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() != 2 {
			return true
		}
		if strings.TrimSpace(tds.Eq(0).Text()) == fieldCourierLabel {
			if v := strings.TrimSpace(tds.Eq(1).Text()); v != "" {
				courierName = v
				return false
			}
		}
		return true
	})

	type event struct {
		at   string
		msg  string
		user string
	}
	var history []event
	doc.Find("div#history tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() < 3 {
			return
		}
		history = append(history, event{
			at:   strings.TrimSpace(tds.Eq(0).Text()),
			msg:  strings.ToLower(strings.TrimSpace(tds.Eq(1).Text())),
			user: strings.TrimSpace(tds.Eq(2).Text()),
		})
	})

	refundReceiptSeen := false
	for _, ev := range history {
		if strings.Contains(ev.msg, msgRefundReceipt) {
			refundReceiptSeen = true
			break
		}
	}

	var createdAt, canceledAt time.Time
	var receiptPrintedAt *time.Time
	rejectedBy := ""
	for _, ev := range history {
		switch {
		case strings.Contains(ev.msg, msgAccepted):
			createdAt, err = time.ParseInLocation(historyTimeLayout, ev.at, period.Moscow)
		case strings.Contains(ev.msg, msgRefundReceipt) && refundReceiptSeen:
			var printed time.Time
			printed, err = time.ParseInLocation(historyTimeLayout, ev.at, period.Moscow)
			if err == nil {
				receiptPrintedAt = &printed
			}
		case strings.Contains(ev.msg, msgRejected):
			canceledAt, err = time.ParseInLocation(historyTimeLayout, ev.at, period.Moscow)
			if ev.user != "" {
				rejectedBy = ev.user
			}
		}
		if err != nil {
			return out, perr.Parsef("order detail: bad event time %q", ev.at)
		}
	}
	if createdAt.IsZero() || canceledAt.IsZero() {
		return out, perr.Parsef("order detail %s: history incomplete", brief.ID)
	}

	out = CanceledOrder{
		ID:                 brief.ID,
		UnitName:           unitName,
		Number:             number,
		Type:               brief.Type,
		Price:              brief.Price,
		CreatedAt:          createdAt,
		CanceledAt:         canceledAt,
		ReceiptPrintedAt:   receiptPrintedAt,
		CourierName:        courierName,
		RejectedByUserName: rejectedBy,
	}
	return out, nil
}
