package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	SessionName = "fiveheart_session"
	// CartIDKey est la clé du cart_id dans la session et dans le contexte gin
	CartIDKey = "cart_id"

	sessionMaxAge = 86400 * 30
)

func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(sessionMaxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session garantit un cart_id par visiteur et le place dans le contexte
func Session(store sessions.Store, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		// Un cookie illisible (secret changé) donne une session neuve
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			log.Warn("⚠️ Session illisible, nouvelle session", zap.Error(err))
		}

		cartID, _ := session.Values[CartIDKey].(string)
		if cartID == "" {
			cartID = uuid.NewString()
			session.Values[CartIDKey] = cartID
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Error("❌ Sauvegarde session impossible", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session indisponible"})
				return
			}
			log.Debug("🛒 Nouveau panier", zap.String("cart_id", cartID))
		}

		c.Set(CartIDKey, cartID)
		c.Next()
	}
}

// CartID lit le cart_id posé par Session
func CartID(c *gin.Context) string {
	return c.GetString(CartIDKey)
}
