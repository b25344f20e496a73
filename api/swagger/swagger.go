package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Manpower ADP API",
        "description": "Workforce attendance and payroll computation API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Scans", "description": "Attendance scan recording"},
        {"name": "Employees", "description": "Employee master data and work logs"},
        {"name": "MasterData", "description": "Departments and shift types"},
        {"name": "CycleTimings", "description": "Payroll cycle templates"},
        {"name": "Payroll", "description": "Monthly summary computation"},
        {"name": "Exports", "description": "CSV/PDF summary exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scans": {
            "post": {
                "tags": ["Scans"],
                "summary": "Record an attendance scan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordScanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employees",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "cycleTimingId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Create employee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEmployeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get employee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/work-logs": {
            "get": {
                "tags": ["Employees"],
                "summary": "List derived daily work logs",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments": {
            "get": {
                "tags": ["MasterData"],
                "summary": "List departments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["MasterData"],
                "summary": "Create department",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNamedRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/shift-types": {
            "get": {
                "tags": ["MasterData"],
                "summary": "List shift types",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["MasterData"],
                "summary": "Create shift type",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNamedRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cycle-timings": {
            "get": {
                "tags": ["CycleTimings"],
                "summary": "List cycle timings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["CycleTimings"],
                "summary": "Create cycle timing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCycleTimingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/summaries/compute": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Compute one employee's monthly summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComputeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/summaries/batch": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Compute monthly summaries for a population",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchComputeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Not the salary month for this cycle", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/summaries": {
            "get": {
                "tags": ["Payroll"],
                "summary": "List monthly summaries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "cycleTimingId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/summaries/{id}/manual": {
            "patch": {
                "tags": ["Payroll"],
                "summary": "Update manual payroll fields",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/summaries/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Render a cycle's summaries to CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a generated export via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RecordScanRequest": {
            "type": "object",
            "properties": {
                "employee_code": {"type": "string"}
            },
            "required": ["employee_code"]
        },
        "CreateEmployeeRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "full_name": {"type": "string"},
                "department_id": {"type": "string"},
                "shift_type_id": {"type": "string"},
                "cycle_timing_id": {"type": "string"},
                "hourly_rate": {"type": "number"},
                "joined_at": {"type": "string"},
                "pf_active": {"type": "boolean"},
                "pf_amount_per_day": {"type": "number"},
                "esic_active": {"type": "boolean"}
            },
            "required": ["code", "full_name", "department_id", "cycle_timing_id", "hourly_rate", "joined_at"]
        },
        "CreateNamedRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            },
            "required": ["name"]
        },
        "CreateCycleTimingRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_day": {"type": "integer"},
                "end_day": {"type": "integer"},
                "span": {"type": "string", "enum": ["SAME_MONTH", "NEXT_MONTH"]}
            },
            "required": ["name", "start_day", "end_day", "span"]
        },
        "ComputeRequest": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            },
            "required": ["employee_id", "year", "month"]
        },
        "BatchComputeRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "cycle_timing_id": {"type": "string"},
                "department_id": {"type": "string"},
                "shift_type_id": {"type": "string"},
                "on_error": {"type": "string", "enum": ["continue", "abort"]}
            },
            "required": ["year", "month", "cycle_timing_id"]
        },
        "ManualUpdateRequest": {
            "type": "object",
            "properties": {
                "overtime_hours": {"type": "number"},
                "advance_amount": {"type": "number"},
                "deductions": {"type": "object"},
                "net_salary": {"type": "number"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "cycle_timing_id": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["year", "month", "format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
