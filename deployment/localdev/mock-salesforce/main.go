package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

type queryResponse struct {
	TotalSize int              `json:"totalSize"`
	Done      bool             `json:"done"`
	Records   []map[string]any `json:"records"`
}

func record(sobjectType string, fields map[string]any) map[string]any {
	fields["attributes"] = map[string]any{"type": sobjectType}
	return fields
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/services/data/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "INVALID_SESSION_ID", "Session expired or invalid")
			return
		}
		soql := r.URL.Query().Get("q")
		writeJSON(w, respond(soql))
	})

	logger := log.New(log.Writer(), "sf-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8443",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8443")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

// respond routes a SOQL string to a canned result. The fixture org has one
// healthy two-level bundle and a picklist with two values.
func respond(soql string) queryResponse {
	switch {
	case strings.HasPrefix(soql, "SELECT COUNT() FROM ProductAttributeDefinition"):
		return queryResponse{TotalSize: 14, Done: true, Records: []map[string]any{}}

	case strings.Contains(soql, "FROM Organization"):
		return ok(record("Organization", map[string]any{
			"Id": "00D000000000001EAA", "Name": "Localdev Org",
			"OrganizationType": "Developer Edition", "InstanceName": "LOCAL",
			"IsSandbox": true, "TrialExpirationDate": nil,
		}))

	case strings.Contains(soql, "FROM User"):
		return ok(record("User", map[string]any{"Id": "005000000000001EAA"}))

	case strings.Contains(soql, "FROM EntityDefinition"):
		records := make([]map[string]any, 0)
		for _, object := range []string{"Product2", "Catalog", "Category", "AttributeDefinition", "Pricebook2", "PricebookEntry"} {
			records = append(records, record("EntityDefinition", map[string]any{
				"QualifiedApiName": object, "InternalSharingModel": "ReadWrite", "Label": object,
			}))
		}
		return queryResponse{TotalSize: len(records), Done: true, Records: records}

	case strings.Contains(soql, "FROM ProductRelatedComponent"):
		return ok(record("ProductRelatedComponent", map[string]any{
			"Id":              "0dS000000000001EAA",
			"ParentProduct":   map[string]any{"Id": "01t000000000001EAA", "Name": "Starter Bundle", "Type": "Bundle"},
			"ChildProduct":    map[string]any{"Id": "01t000000000002EAA", "Name": "Widget", "Type": "Base"},
			"ParentProductId": "01t000000000001EAA",
			"ChildProductId":  "01t000000000002EAA",
		}))

	case strings.Contains(soql, "FROM Product2"):
		return ok(record("Product2", map[string]any{
			"Id": "01t000000000001EAA", "Name": "Starter Bundle", "Type": "Bundle",
		}))

	case strings.Contains(soql, "FROM AttributePicklistValue"):
		records := []map[string]any{
			record("AttributePicklistValue", map[string]any{
				"Id": "0v8000000000001EAA", "PicklistId": "0v5000000000001EAA",
				"Value": "Red", "DisplayValue": "Red",
			}),
			record("AttributePicklistValue", map[string]any{
				"Id": "0v8000000000002EAA", "PicklistId": "0v5000000000001EAA",
				"Value": "Blue", "DisplayValue": "Blue",
			}),
		}
		return queryResponse{TotalSize: len(records), Done: true, Records: records}

	case strings.Contains(soql, "FROM AttributePicklist"):
		return ok(record("AttributePicklist", map[string]any{
			"Id": "0v5000000000001EAA", "Name": "Colors", "Status": "Active",
		}))

	case strings.Contains(soql, "FROM AttributeDefinition"):
		return ok(record("AttributeDefinition", map[string]any{
			"Id": "0tj000000000001EAA", "Name": "Color", "Label": "Color",
			"PicklistId": "0v5000000000001EAA",
		}))

	case strings.Contains(soql, "FROM ProductAttributeDefinition"):
		return ok(record("ProductAttributeDefinition", map[string]any{"Id": "0vL000000000001EAA"}))

	default:
		return queryResponse{TotalSize: 0, Done: true, Records: []map[string]any{}}
	}
}

func ok(records ...map[string]any) queryResponse {
	return queryResponse{TotalSize: len(records), Done: true, Records: records}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode([]map[string]string{{"errorCode": code, "message": message}})
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
