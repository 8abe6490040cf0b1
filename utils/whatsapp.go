package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pos-api/models"
)

const FonnteEndpoint = "https://api.fonnte.com/send"

var ErrNotifierDisabled = errors.New("whatsapp notifier is not configured")

// Notifier mengirim pesan teks ke sebuah nomor WhatsApp.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// FonnteNotifier mengirim notifikasi WhatsApp menggunakan API dari fonnte.com.
type FonnteNotifier struct {
	Token    string
	Endpoint string
	Client   *http.Client
}

func NewFonnteNotifier(token string) *FonnteNotifier {
	return &FonnteNotifier{
		Token:    token,
		Endpoint: FonnteEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *FonnteNotifier) Send(ctx context.Context, phone, message string) error {
	if n.Token == "" {
		return ErrNotifierDisabled
	}

	payload := map[string]string{
		"target":  phone,
		"message": message,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", n.Token)

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}
	return nil
}

// FormatRupiah memformat nominal dengan pemisah ribuan titik: 1500000 -> "Rp 1.500.000".
func FormatRupiah(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "Rp " + sign + b.String()
}

// FormatLowStockMessage menyusun pesan WhatsApp berisi daftar produk yang stoknya menipis.
func FormatLowStockMessage(products []models.Product, threshold int, now time.Time) string {
	var b strings.Builder
	b.WriteString("STOK MENIPIS\n\n")
	fmt.Fprintf(&b, "%d produk di bawah %d unit:\n", len(products), threshold)
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (%s) sisa %d, harga %s\n", i+1, p.Name, p.SKU, p.Stock, FormatRupiah(p.Price))
	}
	fmt.Fprintf(&b, "\n_Waktu: %s_", now.Format("02/01/2006 15:04:05"))
	return b.String()
}
