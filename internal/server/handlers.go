// internal/server/handlers.go
package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nutrilog/internal/account"
	"nutrilog/internal/apierr"
	"nutrilog/internal/models"
)

type registerRequest struct {
	ID         string  `json:"id"`
	Password   string  `json:"pw"`
	BodyWeight float64 `json:"bodyweight"`
	Height     float64 `json:"height"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Activity   int     `json:"activity"`
	RDProtein  float64 `json:"rd_protein"`
	RDCarbo    float64 `json:"rd_carbo"`
	RDFat      float64 `json:"rd_fat"`
}

func (r registerRequest) profile() account.Profile {
	return account.Profile{
		ID:         strings.TrimSpace(r.ID),
		Password:   r.Password,
		BodyWeight: r.BodyWeight,
		Height:     r.Height,
		Age:        r.Age,
		Gender:     models.Gender(r.Gender),
		Activity:   r.Activity,
		Targets:    models.Targets{Protein: r.RDProtein, Carbo: r.RDCarbo, Fat: r.RDFat},
	}
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type lookupRequest struct {
	UserID   string `json:"user_id"`
	FoodName string `json:"food_name"`
}

type addFoodRequest struct {
	ID       string `json:"ID"`
	Date     string `json:"DATE"`
	FoodName string `json:"FOOD_NAME"`
}

type updateFoodRequest struct {
	ID          string `json:"ID"`
	Date        string `json:"DATE"`
	FoodIndex   *int   `json:"FOOD_INDEX"`
	NewFoodName string `json:"NEW_FOOD_NAME"`
}

type periodRequest struct {
	UID   string `json:"UID"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

type adviceResponse struct {
	Averages models.Averages `json:"averages"`
	Advice   string          `json:"advice"`
}

func (s *NutritionServer) handleHealth(c *gin.Context) {
	if err := s.deps.Store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "ok")
}

func (s *NutritionServer) handleRegister(c *gin.Context) {
	var req registerRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.deps.Accounts.Register(c.Request.Context(), req.profile()); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "User registered successfully")
}

func (s *NutritionServer) handleUpdateProfile(c *gin.Context) {
	var req registerRequest
	if !s.bind(c, &req) {
		return
	}
	p := req.profile()
	// with auth on, only the account's own token may change its credentials
	if s.deps.Config.Auth.Required && c.GetString(ctxAuthUser) != p.ID {
		abortError(c, apierr.New(http.StatusForbidden, "forbidden", errWrongUser))
		return
	}
	if !s.authorize(c, p.ID) {
		return
	}
	if err := s.deps.Accounts.UpdateProfile(c.Request.Context(), p); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User updated successfully")
}

func (s *NutritionServer) handleTargets(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if !s.authorize(c, id) {
		return
	}
	targets, err := s.deps.Accounts.Targets(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, targets)
}

func (s *NutritionServer) handleLogin(c *gin.Context) {
	var req loginRequest
	if !s.bind(c, &req) {
		return
	}
	user, token, err := s.deps.Accounts.Login(c.Request.Context(), strings.TrimSpace(req.ID), req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"data":         user,
		"access_token": token,
	})
}

func (s *NutritionServer) handleSend(c *gin.Context) {
	var req lookupRequest
	if !s.bind(c, &req) {
		return
	}
	if !s.authorize(c, req.UserID) {
		return
	}
	rec, err := s.deps.Lookup.Lookup(c.Request.Context(), req.FoodName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rec)
}

func (s *NutritionServer) handleAddFood(c *gin.Context) {
	var req addFoodRequest
	if !s.bind(c, &req) {
		return
	}
	if !s.authorize(c, req.ID) {
		return
	}
	entry, err := s.deps.Ledger.AddFood(c.Request.Context(), req.ID, req.Date, req.FoodName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food added successfully", "data": entry})
}

func (s *NutritionServer) handleUpdateFood(c *gin.Context) {
	var req updateFoodRequest
	if !s.bind(c, &req) {
		return
	}
	if req.FoodIndex == nil {
		s.respondError(c, apierr.Invalid("FOOD_INDEX is required"))
		return
	}
	if !s.authorize(c, req.ID) {
		return
	}
	entry, err := s.deps.Ledger.UpdateFood(c.Request.Context(), req.ID, req.Date, *req.FoodIndex, req.NewFoodName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food updated successfully", "data": entry})
}

func (s *NutritionServer) handleDeleteFood(c *gin.Context) {
	id, date := c.Query("ID"), c.Query("DATE")
	index, err := strconv.Atoi(c.Query("FOOD_INDEX"))
	if err != nil {
		s.respondError(c, apierr.Invalid("FOOD_INDEX must be an integer"))
		return
	}
	if !s.authorize(c, id) {
		return
	}
	removed, err := s.deps.Ledger.DeleteFood(c.Request.Context(), id, date, index)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !removed {
		s.respondError(c, apierr.Wrap(apierr.ErrNotFound, "delete food", nil))
		return
	}
	respondMessage(c, http.StatusOK, "Food deleted successfully")
}

func (s *NutritionServer) handleMonthly(c *gin.Context) {
	var req periodRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UID) {
		return
	}
	rep, err := s.deps.Reports.MonthlyReport(c.Request.Context(), req.UID, req.Year, req.Month)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, rep.Foods)
}

func (s *NutritionServer) handleQuarterly(c *gin.Context) {
	var req periodRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UID) {
		return
	}
	quarter, err := s.deps.Reports.QuarterlyReport(c.Request.Context(), req.UID, req.Year, req.Month)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, quarter)
}

func (s *NutritionServer) handleAdvice(c *gin.Context) {
	var req periodRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UID) {
		return
	}
	ctx := c.Request.Context()
	avg, err := s.deps.Reports.MonthlyAverage(ctx, req.UID, req.Year, req.Month)
	if err != nil {
		s.respondError(c, err)
		return
	}
	text, err := s.deps.Advice.Advice(ctx, avg)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, adviceResponse{Averages: avg, Advice: text})
}

func (s *NutritionServer) handleGetDay(c *gin.Context) {
	var req periodRequest
	if !s.bind(c, &req) || !s.authorize(c, req.UID) {
		return
	}
	day, err := s.deps.Reports.Day(c.Request.Context(), req.UID, req.Year, req.Month, req.Day)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, day)
}
