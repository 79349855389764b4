// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"

	"nutrilog/internal/apierr"
)

type LookupFoodParams struct {
	UserID   string `json:"user_id,omitempty" description:"Caller id, checked against the token when one is presented"`
	FoodName string `json:"food_name" description:"Food to estimate nutrients for"`
}

type AddFoodParams struct {
	UserID   string `json:"user_id" description:"Owner of the food log"`
	Date     string `json:"date" description:"Day the food was eaten (YYYY-MM-DD)"`
	FoodName string `json:"food_name" description:"Food to log"`
}

type GetDayParams struct {
	UserID string `json:"user_id" description:"Owner of the food log"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
}

type MonthlyAverageParams struct {
	UserID string `json:"user_id" description:"Owner of the food log"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

type toolFunc func(ctx context.Context, caller string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

func (s *NutritionServer) tools() map[string]toolFunc {
	return map[string]toolFunc{
		"lookup_food":     s.toolLookupFood,
		"add_food":        s.toolAddFood,
		"get_day":         s.toolGetDay,
		"monthly_average": s.toolMonthlyAverage,
	}
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return apierr.Invalid("failed to marshal arguments: %v", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return apierr.Invalid("failed to unmarshal parameters: %v", err)
	}
	return nil
}

func checkCaller(caller, userID string) error {
	if caller != "" && userID != "" && caller != userID {
		return apierr.Wrap(apierr.ErrForbidden, "tool call", errWrongUser)
	}
	return nil
}

func (s *NutritionServer) handleMCPInfo(c *gin.Context) {
	names := make([]string, 0, len(s.tools()))
	for name := range s.tools() {
		names = append(names, name)
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{
		"server": protocol.Implementation{Name: "nutrilog", Version: s.deps.Version},
		"tools":  names,
	})
}

func (s *NutritionServer) handleMCP(c *gin.Context) {
	var request protocol.CallToolRequest
	if !s.bind(c, &request) {
		return
	}

	tool, ok := s.tools()[request.Name]
	if !ok {
		s.respondError(c, apierr.Wrap(apierr.ErrNotFound, "", fmt.Errorf("unknown tool: %s", request.Name)))
		return
	}

	result, err := tool(c.Request.Context(), c.GetString(ctxAuthUser), &request)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *NutritionServer) toolLookupFood(ctx context.Context, caller string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := checkCaller(caller, params.UserID); err != nil {
		return nil, err
	}
	rec, err := s.deps.Lookup.Lookup(ctx, params.FoodName)
	if err != nil {
		return nil, err
	}
	return createJSONResponse(rec)
}

func (s *NutritionServer) toolAddFood(ctx context.Context, caller string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := checkCaller(caller, params.UserID); err != nil {
		return nil, err
	}
	entry, err := s.deps.Ledger.AddFood(ctx, strings.TrimSpace(params.UserID), params.Date, params.FoodName)
	if err != nil {
		return nil, err
	}
	return createJSONResponse(entry)
}

func (s *NutritionServer) toolGetDay(ctx context.Context, caller string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetDayParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := checkCaller(caller, params.UserID); err != nil {
		return nil, err
	}
	day, err := s.deps.Reports.Day(ctx, params.UserID, params.Year, params.Month, params.Day)
	if err != nil {
		return nil, err
	}
	return createJSONResponse(day)
}

func (s *NutritionServer) toolMonthlyAverage(ctx context.Context, caller string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params MonthlyAverageParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := checkCaller(caller, params.UserID); err != nil {
		return nil, err
	}
	avg, err := s.deps.Reports.MonthlyAverage(ctx, params.UserID, params.Year, params.Month)
	if err != nil {
		return nil, err
	}
	return createJSONResponse(avg)
}

func createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
