package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gate-access-backend/models"
)

var (
	ErrBadMSISDN      = errors.New("phone must be 2547XXXXXXXX")
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrPaymentMissing = errors.New("payment not found")
)

// Public sandbox LNMO shortcode/passkey defaults from the Daraja docs.
const (
	sandboxShortcode = "174379"
	sandboxPasskey   = "bfb279f9aa9bdbcf158e97dd71a467cd2e0c893059b37e92f6e314b2c4f7f0d9"
)

// STKPushResponse is the Daraja acknowledgement for an initiated push.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

// PaymentService drives the M-Pesa STK push checkout and resolves the
// asynchronous Daraja callback into a plan upgrade.
type PaymentService struct {
	DB    *gorm.DB
	HTTP  *http.Client
	Users *UserService
	Now   func() time.Time
}

func NewPaymentService(db *gorm.DB, users *UserService) *PaymentService {
	return &PaymentService{
		DB:    db,
		HTTP:  &http.Client{Timeout: 45 * time.Second},
		Users: users,
		Now:   LocalNow,
	}
}

func mpesaBaseURL() string {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("MPESA_ENV")))
	if env == "live" {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}

// NormalizeMSISDN strips spaces and leading + from a phone number.
func NormalizeMSISDN(msisdn string) string {
	s := strings.TrimSpace(msisdn)
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimPrefix(s, "+")
}

func validMSISDN(phone string) bool {
	if !strings.HasPrefix(phone, "2547") || len(phone) != 12 {
		return false
	}
	_, err := strconv.Atoi(phone)
	return err == nil
}

// PlanAmount returns the plan price in KES from env, defaulting to 1 and 2
// shillings so sandbox STK pushes stay cheap.
func PlanAmount(plan string) (int, error) {
	switch plan {
	case models.PlanBasic:
		if v, err := strconv.Atoi(os.Getenv("BASIC_PRICE_KES")); err == nil && v > 0 {
			return v, nil
		}
		return 1, nil
	case models.PlanPremium:
		if v, err := strconv.Atoi(os.Getenv("PREMIUM_PRICE_KES")); err == nil && v > 0 {
			return v, nil
		}
		return 2, nil
	default:
		return 0, ErrUnknownPlan
	}
}

func (s *PaymentService) accessToken() (string, error) {
	key := os.Getenv("MPESA_CONSUMER_KEY")
	secret := os.Getenv("MPESA_CONSUMER_SECRET")
	if key == "" || secret == "" {
		return "", errors.New("missing MPESA_CONSUMER_KEY / MPESA_CONSUMER_SECRET")
	}

	req, err := http.NewRequest("GET", mpesaBaseURL()+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(key, secret)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("oauth request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oauth HTTP %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("oauth JSON parse: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("oauth returned empty access_token")
	}
	return out.AccessToken, nil
}

func lnmoPassword(shortcode, passkey, timestamp string) string {
	raw := shortcode + passkey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// InitiateCheckout pushes an STK prompt to the user's phone and records a
// pending Payment keyed by CheckoutRequestID. The plan only changes once the
// callback confirms the money moved.
func (s *PaymentService) InitiateCheckout(user *models.User, plan, phone string) (*models.Payment, *STKPushResponse, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	amount, err := PlanAmount(plan)
	if err != nil {
		return nil, nil, err
	}
	phone = NormalizeMSISDN(phone)
	if !validMSISDN(phone) {
		return nil, nil, ErrBadMSISDN
	}

	shortcode := strings.TrimSpace(os.Getenv("MPESA_SHORTCODE"))
	if shortcode == "" {
		shortcode = sandboxShortcode
	}
	passkey := strings.TrimSpace(os.Getenv("MPESA_PASSKEY"))
	if passkey == "" {
		passkey = sandboxPasskey
	}
	callbackURL := os.Getenv("MPESA_CALLBACK_URL")
	if callbackURL == "" {
		return nil, nil, errors.New("missing MPESA_CALLBACK_URL")
	}

	shortcodeNum, err := strconv.Atoi(shortcode)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid MPESA_SHORTCODE: %w", err)
	}

	timestamp := s.Now().Format("20060102150405")
	token, err := s.accessToken()
	if err != nil {
		return nil, nil, err
	}

	accountRef := fmt.Sprintf("%s-%s", plan, uuid.NewString()[:8])
	payload := map[string]interface{}{
		"BusinessShortCode": shortcodeNum,
		"Password":          lnmoPassword(shortcode, passkey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            shortcodeNum,
		"PhoneNumber":       phone,
		"CallBackURL":       callbackURL,
		"AccountReference":  accountRef[:min(len(accountRef), 12)],
		"TransactionDesc":   plan + " subscription",
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", mpesaBaseURL()+"/mpesa/stkpush/v1/processrequest", strings.NewReader(string(b)))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var stk STKPushResponse
	if err := json.Unmarshal(body, &stk); err != nil {
		return nil, nil, fmt.Errorf("daraja HTTP %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("daraja HTTP %d: %s", resp.StatusCode, string(body))
	}
	if stk.ResponseCode != "0" {
		msg := stk.ErrorMessage
		if msg == "" {
			msg = stk.ResponseDescription
		}
		return nil, &stk, fmt.Errorf("stk not initiated: %s", msg)
	}

	payment := models.Payment{
		UserID:            user.ID,
		Plan:              plan,
		Amount:            amount,
		Phone:             phone,
		AccountReference:  accountRef,
		MerchantRequestID: stk.MerchantRequestID,
		CheckoutRequestID: stk.CheckoutRequestID,
		Status:            models.PaymentPending,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, &stk, fmt.Errorf("payment create: %w", err)
	}
	return &payment, &stk, nil
}

// StkCallback is the body Daraja posts back after the customer responds.
type StkCallback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// HandleCallback settles the pending payment the callback refers to and, on
// success, upgrades the paying user's plan.
func (s *PaymentService) HandleCallback(payload []byte) error {
	var cb StkCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return fmt.Errorf("bad callback payload: %w", err)
	}
	inner := cb.Body.StkCallback
	if inner.CheckoutRequestID == "" {
		return errors.New("callback missing CheckoutRequestID")
	}

	var payment models.Payment
	err := s.DB.Where("checkout_request_id = ?", inner.CheckoutRequestID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaymentMissing
	}
	if err != nil {
		return fmt.Errorf("payment lookup: %w", err)
	}

	items := map[string]interface{}{}
	receipt := ""
	for _, it := range inner.CallbackMetadata.Item {
		items[it.Name] = it.Value
		if it.Name == "MpesaReceiptNumber" {
			receipt, _ = it.Value.(string)
		}
	}
	meta, _ := json.Marshal(items)

	status := models.PaymentFailed
	if inner.ResultCode == 0 {
		status = models.PaymentPaid
	}
	updates := map[string]interface{}{
		"status":            status,
		"receipt_number":    receipt,
		"callback_metadata": datatypes.JSON(meta),
	}
	if err := s.DB.Model(&payment).Updates(updates).Error; err != nil {
		return fmt.Errorf("payment update: %w", err)
	}

	log.Printf("[MPESA RESULT] checkout=%s code=%d desc=%s", inner.CheckoutRequestID, inner.ResultCode, inner.ResultDesc)

	if status == models.PaymentPaid {
		if err := s.Users.SetPlan(payment.UserID, payment.Plan); err != nil {
			return fmt.Errorf("plan upgrade: %w", err)
		}
	}
	return nil
}

// ListForUser returns a user's payment history, newest first.
func (s *PaymentService) ListForUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Where("user_id = ?", userID).Order("id DESC").Find(&payments).Error
	return payments, err
}

// LatestPaidForUser returns the most recent successful payment, or nil when
// the user has never paid.
func (s *PaymentService) LatestPaidForUser(userID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.Where("user_id = ? AND status = ?", userID, models.PaymentPaid).
		Order("id DESC").First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
