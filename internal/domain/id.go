package domain

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const (
	orderIDPrefix   = "ORD"
	paymentIDPrefix = "PAY"

	idSuffixLength  = 5
	idSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewOrderID mints an order identifier of the form ORD-<ms epoch>-<suffix>.
func NewOrderID(now time.Time) string {
	return newRecordID(orderIDPrefix, now)
}

// NewPaymentID mints a payment identifier of the form PAY-<ms epoch>-<suffix>.
func NewPaymentID(now time.Time) string {
	return newRecordID(paymentIDPrefix, now)
}

func newRecordID(prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')
	b.WriteString(randomSuffix())
	return b.String()
}

func randomSuffix() string {
	buf := make([]byte, idSuffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// constant suffix rather than panic in an ID helper.
		return strings.Repeat("0", idSuffixLength)
	}
	for i, b := range buf {
		buf[i] = idSuffixCharset[int(b)%len(idSuffixCharset)]
	}
	return string(buf)
}
