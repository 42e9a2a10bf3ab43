package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/i18n"
	"github.com/terraincognita07/dentclinic/internal/metrics"
	"github.com/terraincognita07/dentclinic/internal/services"
	"github.com/terraincognita07/dentclinic/internal/session"
)

const (
	authCookieName     = "dentclinic_session"
	languageCookieName = "dentclinic_lang"

	contextLanguageKey = "language"
	contextIdentityKey = "identity"

	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute
)

// Dependencies wires the handler to one composed backend.
type Dependencies struct {
	Authenticator session.Authenticator
	Tokens        *session.Tokens
	Patients      *services.PatientService
	Appointments  *services.AppointmentService
	Financial     *services.FinancialService
	Notifications *services.NotificationService
	I18n          *i18n.Manager
	Metrics       *metrics.Collector
	Location      *time.Location
	CookieSecure  bool
	Logger        logrus.FieldLogger
}

type Handler struct {
	authenticator session.Authenticator
	tokens        *session.Tokens
	patients      *services.PatientService
	appointments  *services.AppointmentService
	financial     *services.FinancialService
	notifications *services.NotificationService
	i18n          *i18n.Manager
	metrics       *metrics.Collector
	location      *time.Location
	cookieSecure  bool
	logger        logrus.FieldLogger
	loginLimiter  *attemptLimiter
	now           func() time.Time
}

func NewHandler(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Authenticator == nil || deps.Tokens == nil:
		return nil, errors.New("authenticator and tokens are required")
	case deps.Patients == nil || deps.Appointments == nil || deps.Financial == nil || deps.Notifications == nil:
		return nil, errors.New("all services are required")
	case deps.I18n == nil:
		return nil, errors.New("i18n manager is required")
	}

	location := deps.Location
	if location == nil {
		location = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		authenticator: deps.Authenticator,
		tokens:        deps.Tokens,
		patients:      deps.Patients,
		appointments:  deps.Appointments,
		financial:     deps.Financial,
		notifications: deps.Notifications,
		i18n:          deps.I18n,
		metrics:       deps.Metrics,
		location:      location,
		cookieSecure:  deps.CookieSecure,
		logger:        logger,
		loginLimiter:  newAttemptLimiter(),
		now:           time.Now,
	}, nil
}

func (handler *Handler) today() string {
	return services.FormatDay(handler.now().In(handler.location))
}
