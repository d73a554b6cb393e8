package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("stu-1", "Lina", "student", "classtrack", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty tokens")
	}
	if !pair.RefreshExp.After(pair.AccessExp) {
		t.Error("refresh token must outlive the access token")
	}

	claims, err := Parse(pair.AccessToken, "test-key", "classtrack")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "stu-1" || claims.Name != "Lina" || claims.Role != "student" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("stu-1", "Lina", "student", "classtrack", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "other-key", "classtrack"); err == nil {
		t.Error("token signed with another key must not parse")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	pair, err := Issue("stu-1", "Lina", "student", "other-app", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "test-key", "classtrack"); err == nil {
		t.Error("token from another issuer must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("stu-1", "Lina", "student", "classtrack", "test-key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "test-key", "classtrack"); err == nil {
		t.Error("expired token must not parse")
	}
}
