package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restokit/restos/config"
)

// Context keys injected into every request.
const (
	ContextKeyDB        = "restos_db"
	ContextKeyApp       = "restos_app"
	ContextKeyPrincipal = "user"
)

// AppContext is the slice of the application the web server needs.
type AppContext interface {
	DB() *gorm.DB
	Config() *config.AppConfig
	GetSettingsStringValue(category, key string) string
}

// TokenClaims JWT claims issued at login.
type TokenClaims struct {
	OprId    int64  `json:"oid,string"`
	Username string `json:"usr"`
	Level    string `json:"lvl"`
	jwt.RegisteredClaims
}

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	pub    *echo.Group
	appCtx AppContext
}

var server *WebServer

// jsonSerializer routes echo's JSON handling through json-iterator.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

// Init builds the echo instance, the public and the JWT protected groups.
func Init(appCtx AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = newValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyDB, appCtx.DB())
			c.Set(ContextKeyApp, appCtx)
			return next(c)
		}
	})

	pub := e.Group("/api/auth")

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(TokenClaims)
		},
		ContextKey: ContextKeyPrincipal,
	}))

	server = &WebServer{root: e, api: api, pub: pub, appCtx: appCtx}
	return server
}

// Start runs the HTTP listener until the process exits.
func Start() error {
	cfg := server.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	server.root.Server.ReadTimeout = 30 * time.Second
	server.root.Server.WriteTimeout = 60 * time.Second
	return server.root.Start(addr)
}

// Shutdown stops the listener.
func Shutdown() error {
	if server == nil {
		return nil
	}
	return server.root.Close()
}

// Echo exposes the underlying echo instance (used in tests).
func Echo() *echo.Echo {
	return server.root
}

// IssueToken signs a JWT for the operator.
func IssueToken(secret string, oprID int64, username, level string, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		OprId:    oprID,
		Username: username,
		Level:    level,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Route registration helpers, called by the admin API packages.

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
