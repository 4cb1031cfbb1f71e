package mailer

import (
	"errors"
	"fmt"
	"strings"

	"app/internal/domain/model"
	"app/internal/usecase"
)

// このステータス宛のメールは定義されていない
var ErrNoTemplate = errors.New("no template for status")

type renderedMail struct {
	Subject string
	Body    string
}

type templateFunc func(n usecase.OrderNotification) renderedMail

// ステータス→テンプレートの対応表。
// 文字列マッチの分岐ではなくenumキーの表にして、未定義ステータスは
// 明示的にErrNoTemplateへ落とす。
var templates = map[model.OrderStatus]templateFunc{
	model.OrderStatusPaid:           renderPaid,
	model.OrderStatusProcessing:     renderProcessing,
	model.OrderStatusShipped:        renderShipped,
	model.OrderStatusReadyForPickup: renderReadyForPickup,
	model.OrderStatusCompleted:      renderCompleted,
	model.OrderStatusCancelled:      renderCancelled,
}

func render(n usecase.OrderNotification) (renderedMail, error) {
	fn, ok := templates[n.Status]
	if !ok {
		return renderedMail{}, fmt.Errorf("%w: %s", ErrNoTemplate, n.Status)
	}
	return fn(n), nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func itemLines(n usecase.OrderNotification) string {
	var b strings.Builder
	for _, it := range n.Items {
		fmt.Fprintf(&b, "- %s x%d (%s)\n", it.ProductNameSnapshot, it.Quantity, formatAmount(it.UnitPriceSnapshot))
	}
	return b.String()
}

func renderPaid(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("ご注文ありがとうございます（注文番号 %d）", n.OrderID),
		Body: fmt.Sprintf("%s 様\n\nお支払いを確認しました。\n\n%s\n合計: %s\n\n発送準備が整い次第ご連絡します。",
			n.CustomerName, itemLines(n), formatAmount(n.TotalAmount)),
	}
}

func renderProcessing(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("ご注文を準備中です（注文番号 %d）", n.OrderID),
		Body:    fmt.Sprintf("%s 様\n\nご注文の準備を始めました。", n.CustomerName),
	}
}

func renderShipped(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("商品を発送しました（注文番号 %d）", n.OrderID),
		Body:    fmt.Sprintf("%s 様\n\n商品を発送しました。到着までしばらくお待ちください。", n.CustomerName),
	}
}

func renderReadyForPickup(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("お受け取りの準備ができました（注文番号 %d）", n.OrderID),
		Body:    fmt.Sprintf("%s 様\n\n店頭でのお受け取りが可能になりました。", n.CustomerName),
	}
}

func renderCompleted(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("お取引が完了しました（注文番号 %d）", n.OrderID),
		Body:    fmt.Sprintf("%s 様\n\nお取引が完了しました。またのご利用をお待ちしております。", n.CustomerName),
	}
}

func renderCancelled(n usecase.OrderNotification) renderedMail {
	return renderedMail{
		Subject: fmt.Sprintf("ご注文をキャンセルしました（注文番号 %d）", n.OrderID),
		Body:    fmt.Sprintf("%s 様\n\nご注文はキャンセルされました。", n.CustomerName),
	}
}
