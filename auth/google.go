package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"mywall/db"
	"mywall/models"
	"mywall/utils"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// googleHandler signs in with a Google ID token obtained by the client's
// OAuth popup. First sign-in creates the account.
func googleHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.IDToken == "" {
		http.Error(w, "Missing ID token", http.StatusBadRequest)
		return
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	if clientID == "" {
		http.Error(w, "Google sign-in not configured", http.StatusServiceUnavailable)
		return
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{clientID}); err != nil {
		http.Error(w, "Invalid Google ID token", http.StatusUnauthorized)
		return
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
	if err != nil {
		http.Error(w, "Failed to decode ID token", http.StatusInternalServerError)
		return
	}

	var user models.User
	err = db.UserCollection.FindOne(context.TODO(), bson.M{"googleId": claimSet.Sub}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		user, err = createGoogleUser(claimSet.Email, claimSet.Name, claimSet.Sub)
		if err != nil {
			log.Printf("Google registration failed for %s: %v", claimSet.Email, err)
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	issueSession(w, user)
}

func createGoogleUser(email, name, googleID string) (models.User, error) {
	if name == "" {
		name = utils.DisplayNameFromEmail(email)
	}
	// Random password: Google accounts never log in with one.
	placeholder, err := bcrypt.GenerateFromPassword([]byte(utils.GenerateRandomString(24)), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		UserID:      "u" + utils.GenerateRandomString(10),
		Email:       email,
		DisplayName: name,
		Password:    string(placeholder),
		GoogleID:    googleID,
		Role:        []string{"user"},
		CreatedAt:   time.Now(),
	}
	if _, err := db.UserCollection.InsertOne(context.TODO(), user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
