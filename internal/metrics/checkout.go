package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// チェックアウト処理のレイテンシ
	CheckoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Latency of the checkout transaction",
		Buckets: prometheus.DefBuckets,
	})

	// 結果別のチェックアウト件数
	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_total",
		Help: "Checkout attempts by result",
	}, []string{"result"})

	// 一時障害からのリトライ回数
	CheckoutRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_retries_total",
		Help: "Checkout attempts retried after a transient failure",
	})
)

func Init() {
	prometheus.MustRegister(
		CheckoutDuration,
		CheckoutTotal,
		CheckoutRetries,
	)
}
