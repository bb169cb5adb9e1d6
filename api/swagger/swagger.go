package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Timetable API",
        "description": "Weekly course calendar with overlap layout, course catalogue and program requirements",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Auth", "description": "Directory login and session"},
        {"name": "Timetable", "description": "Weekly calendar and filter options"},
        {"name": "Courses", "description": "Course offerings"},
        {"name": "References", "description": "Lookup tables shared by courses and programs"},
        {"name": "Programs", "description": "Programs and their required courses"},
        {"name": "Staff", "description": "Staff accounts, superuser only"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with directory credentials",
                "security": [],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly calendar",
                "parameters": [
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/term"},
                    {"$ref": "#/parameters/courseFilters"},
                    {"$ref": "#/parameters/program"},
                    {"$ref": "#/parameters/level"}
                ],
                "responses": {
                    "200": {"description": "Calendar layout", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Missing year or term, or malformed course_filters", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/timetable/export.pdf": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly calendar as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/year"},
                    {"$ref": "#/parameters/term"},
                    {"$ref": "#/parameters/courseFilters"},
                    {"$ref": "#/parameters/program"},
                    {"$ref": "#/parameters/level"}
                ],
                "responses": {
                    "200": {"description": "PDF document", "schema": {"type": "file"}}
                }
            }
        },
        "/timetable/options/years": {"get": {"tags": ["Timetable"], "summary": "Academic years", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/timetable/options/codes": {"get": {"tags": ["Timetable"], "summary": "Course codes", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/timetable/options/terms": {"get": {"tags": ["Timetable"], "summary": "Terms of a year", "parameters": [{"in": "query", "name": "year", "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/timetable/options/numbers": {"get": {"tags": ["Timetable"], "summary": "Numbers of a code", "parameters": [{"in": "query", "name": "code", "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/timetable/options/programs": {"get": {"tags": ["Timetable"], "summary": "Program names", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/timetable/options/levels": {"get": {"tags": ["Timetable"], "summary": "Levels of a program", "parameters": [{"in": "query", "name": "program", "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}},
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"in": "query", "name": "code", "type": "string"},
                    {"in": "query", "name": "number", "type": "string"},
                    {"in": "query", "name": "section", "type": "string"},
                    {"in": "query", "name": "term", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"in": "query", "name": "year", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"in": "query", "name": "day", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "sort", "type": "string"},
                    {"in": "query", "name": "order", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid day or time", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Duplicate offering", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/courses/export.csv": {
            "get": {
                "tags": ["Courses"],
                "summary": "Export courses as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV", "schema": {"type": "file"}}}
            }
        },
        "/courses/{id}": {
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "integer"}],
            "get": {"tags": ["Courses"], "summary": "Get course", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "404": {"description": "Not found"}}},
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "404": {"description": "Not found"}}
            },
            "delete": {"tags": ["Courses"], "summary": "Delete course", "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        },
        "/references": {
            "get": {"tags": ["References"], "summary": "Reference kinds", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}
        },
        "/references/{kind}": {
            "parameters": [{"$ref": "#/parameters/kind"}],
            "get": {"tags": ["References"], "summary": "List reference items", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}},
            "post": {
                "tags": ["References"],
                "summary": "Create reference item",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ReferenceRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}, "409": {"description": "Duplicate name"}}
            }
        },
        "/references/{kind}/{id}": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"in": "path", "name": "id", "required": true, "type": "integer"}],
            "put": {
                "tags": ["References"],
                "summary": "Rename reference item",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ReferenceRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "delete": {"tags": ["References"], "summary": "Delete reference item", "responses": {"204": {"description": "Deleted"}}}
        },
        "/references/{kind}/{id}/affected": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"in": "path", "name": "id", "required": true, "type": "integer"}],
            "get": {"tags": ["References"], "summary": "Courses or programs touched by a change", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}
        },
        "/programs": {
            "get": {"tags": ["Programs"], "summary": "List programs", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}},
            "post": {
                "tags": ["Programs"],
                "summary": "Create program",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ProgramRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}, "409": {"description": "Duplicate program"}}
            }
        },
        "/requirements": {
            "get": {
                "tags": ["Programs"],
                "summary": "Required courses of a program",
                "parameters": [{"$ref": "#/parameters/program"}, {"$ref": "#/parameters/level"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "404": {"description": "Unknown program"}}
            }
        },
        "/requirements/attach": {
            "post": {
                "tags": ["Programs"],
                "summary": "Attach every section of a course to a program",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RequirementChange"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "409": {"description": "Already attached"}}
            }
        },
        "/requirements/detach": {
            "post": {
                "tags": ["Programs"],
                "summary": "Detach every section of a course from a program",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RequirementChange"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "404": {"description": "Not attached"}}
            }
        },
        "/staff": {
            "get": {"tags": ["Staff"], "summary": "List staff accounts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "403": {"description": "Superuser only"}}}
        },
        "/staff/{id}/role": {
            "put": {
                "tags": ["Staff"],
                "summary": "Change a staff role",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"role": {"type": "string", "enum": ["STAFF", "SUPERUSER"]}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/metrics/summary": {
            "get": {"summary": "Request and layout metrics", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}
        }
    },
    "parameters": {
        "year": {"in": "query", "name": "year", "required": true, "type": "string"},
        "term": {"in": "query", "name": "term", "required": true, "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
        "courseFilters": {"in": "query", "name": "course_filters", "type": "string", "description": "JSON array of {code, numbers}"},
        "program": {"in": "query", "name": "program", "type": "string"},
        "level": {"in": "query", "name": "level", "type": "string"},
        "kind": {"in": "path", "name": "kind", "required": true, "type": "string", "enum": ["terms", "codes", "numbers", "sections", "times", "days", "years", "program-names", "program-levels"]}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CourseRequest": {
            "type": "object",
            "required": ["code", "number", "section", "term", "academicYear"],
            "properties": {
                "code": {"type": "string"},
                "number": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"},
                "academicYear": {"type": "string"},
                "day": {"type": "string", "example": "Mon_Wed"},
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "10:30"}
            }
        },
        "ReferenceRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "ProgramRequest": {
            "type": "object",
            "required": ["program", "level"],
            "properties": {"program": {"type": "string"}, "level": {"type": "string"}}
        },
        "RequirementChange": {
            "type": "object",
            "required": ["program", "level", "code", "number"],
            "properties": {
                "program": {"type": "string"},
                "level": {"type": "string"},
                "code": {"type": "string"},
                "number": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
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
