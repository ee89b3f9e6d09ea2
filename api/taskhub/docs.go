// Package taskhub holds the OpenAPI 2.0 document served at /swagger/. It is
// maintained by hand in the layout swag emits and registered with swag so
// http-swagger can serve it; keep it in step with the @Router annotations in
// internal/taskhub/http.
package taskhub

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "AussieBroadWAN Team",
			"url": "https://github.com/aussiebroadwan/taskhub"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/register": {
			"post": {
				"summary": "Register an account",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.MessageResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"502": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"summary": "Log in",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.LoginResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/auth/login/mfa": {
			"post": {
				"summary": "Complete a two-factor login",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.MFALoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.LoginResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"429": {
						"description": "too many wrong codes for this challenge",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/auth/verify-email": {
			"post": {
				"summary": "Verify an email address",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.VerifyEmailRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.MessageResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/auth/reset-password-request": {
			"post": {
				"summary": "Request a password reset link",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.PasswordResetRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.MessageResponse"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"502": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/auth/reset-password": {
			"post": {
				"summary": "Reset a password",
				"tags": [
					"Auth"
				],
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.ResetPasswordRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.MessageResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/users/me": {
			"get": {
				"summary": "Current user",
				"tags": [
					"Users"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.User"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/users/me/avatar": {
			"post": {
				"summary": "Presign an avatar upload",
				"tags": [
					"Users"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.AvatarUploadRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.AvatarUploadResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"501": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/mfa/totp/enroll": {
			"post": {
				"summary": "Start TOTP enrollment",
				"tags": [
					"MFA"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.TOTPEnrollResponse"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/mfa/totp/verify": {
			"post": {
				"summary": "Confirm TOTP enrollment",
				"tags": [
					"MFA"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.TOTPCodeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.BackupCodesResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/mfa/backup-codes": {
			"post": {
				"summary": "Regenerate backup codes",
				"tags": [
					"MFA"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.TOTPCodeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.BackupCodesResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/mfa/totp": {
			"delete": {
				"summary": "Disable MFA",
				"tags": [
					"MFA"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.TOTPCodeRequest"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/workspaces": {
			"post": {
				"summary": "Create a workspace",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.CreateWorkspaceRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Workspace"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			},
			"get": {
				"summary": "List the caller's workspaces",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/taskhubsdk.Workspace"
							}
						}
					}
				}
			}
		},
		"/workspaces/{workspaceId}": {
			"get": {
				"summary": "Get a workspace with its members",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Workspace"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/workspaces/{workspaceId}/members": {
			"post": {
				"summary": "Add a member",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.AddMemberRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.WorkspaceMember"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/workspaces/{workspaceId}/members/{userId}": {
			"patch": {
				"summary": "Change a member's role",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "userId",
						"name": "userId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.UpdateMemberRoleRequest"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			},
			"delete": {
				"summary": "Remove a member",
				"tags": [
					"Workspaces"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "userId",
						"name": "userId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/workspaces/{workspaceId}/projects": {
			"post": {
				"summary": "Create a project",
				"tags": [
					"Projects"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.CreateProjectRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Project"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			},
			"get": {
				"summary": "List a workspace's projects",
				"tags": [
					"Projects"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "workspaceId",
						"name": "workspaceId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/taskhubsdk.Project"
							}
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/projects/{projectId}": {
			"get": {
				"summary": "Get a project with its members",
				"tags": [
					"Projects"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "projectId",
						"name": "projectId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Project"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/projects/{projectId}/tasks": {
			"get": {
				"summary": "List a project's tasks",
				"tags": [
					"Projects"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "projectId",
						"name": "projectId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.ProjectTasksResponse"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			},
			"post": {
				"summary": "Create a task",
				"tags": [
					"Tasks"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "projectId",
						"name": "projectId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.CreateTaskRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Task"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/tasks/{taskId}/status": {
			"patch": {
				"summary": "Move a task to another status",
				"tags": [
					"Tasks"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "taskId",
						"name": "taskId",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/taskhubsdk.UpdateTaskStatusRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.Task"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/tasks/{taskId}/archive": {
			"post": {
				"summary": "Archive a task",
				"tags": [
					"Tasks"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "taskId",
						"name": "taskId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpx.ErrorBody"
						}
					}
				}
			}
		},
		"/livez": {
			"get": {
				"summary": "Health Check Endpoint",
				"tags": [
					"Health"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.HealthResponse"
						}
					}
				}
			}
		},
		"/readyz": {
			"get": {
				"summary": "Readiness Check Endpoint",
				"tags": [
					"Health"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.HealthResponse"
						}
					},
					"503": {
						"description": "service not ready",
						"schema": {
							"$ref": "#/definitions/taskhubsdk.HealthResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"httpx.ErrorBody": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"taskhubsdk.RegisterRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"minLength": 3,
					"example": "Ana"
				},
				"email": {
					"type": "string",
					"example": "ana@x.com"
				},
				"password": {
					"type": "string",
					"minLength": 8,
					"example": "password123"
				}
			},
			"required": [
				"email",
				"name",
				"password"
			]
		},
		"taskhubsdk.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"taskhubsdk.LoginResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"expiresAt": {
					"type": "string",
					"format": "date-time"
				},
				"user": {
					"$ref": "#/definitions/taskhubsdk.User"
				},
				"mfaRequired": {
					"type": "boolean"
				},
				"mfaToken": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"taskhubsdk.MFALoginRequest": {
			"type": "object",
			"properties": {
				"mfaToken": {
					"type": "string"
				},
				"code": {
					"type": "string"
				}
			},
			"required": [
				"code",
				"mfaToken"
			]
		},
		"taskhubsdk.VerifyEmailRequest": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				}
			},
			"required": [
				"token"
			]
		},
		"taskhubsdk.PasswordResetRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				}
			},
			"required": [
				"email"
			]
		},
		"taskhubsdk.ResetPasswordRequest": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"newPassword": {
					"type": "string",
					"minLength": 8
				},
				"confirmPassword": {
					"type": "string",
					"minLength": 8
				}
			},
			"required": [
				"confirmPassword",
				"newPassword",
				"token"
			]
		},
		"taskhubsdk.MessageResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				}
			}
		},
		"taskhubsdk.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"profilePicture": {
					"type": "string"
				},
				"isEmailVerified": {
					"type": "boolean"
				},
				"mfaEnabled": {
					"type": "boolean"
				},
				"lastLogin": {
					"type": "string",
					"format": "date-time"
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				},
				"updatedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.AvatarUploadRequest": {
			"type": "object",
			"properties": {
				"contentType": {
					"type": "string",
					"enum": [
						"image/png",
						"image/jpeg",
						"image/webp",
						"image/gif"
					]
				}
			},
			"required": [
				"contentType"
			]
		},
		"taskhubsdk.AvatarUploadResponse": {
			"type": "object",
			"properties": {
				"uploadUrl": {
					"type": "string"
				},
				"key": {
					"type": "string"
				},
				"expiresAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.TOTPEnrollResponse": {
			"type": "object",
			"properties": {
				"secret": {
					"type": "string",
					"example": "JBSWY3DPEHPK3PXP"
				},
				"qrCode": {
					"type": "string"
				},
				"issuer": {
					"type": "string"
				},
				"account": {
					"type": "string"
				}
			}
		},
		"taskhubsdk.TOTPCodeRequest": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				}
			},
			"required": [
				"code"
			]
		},
		"taskhubsdk.BackupCodesResponse": {
			"type": "object",
			"properties": {
				"codes": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"taskhubsdk.CreateWorkspaceRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"minLength": 3
				},
				"description": {
					"type": "string"
				},
				"color": {
					"type": "string",
					"minLength": 3
				}
			},
			"required": [
				"color",
				"name"
			]
		},
		"taskhubsdk.Workspace": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"color": {
					"type": "string"
				},
				"ownerId": {
					"type": "string"
				},
				"members": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/taskhubsdk.WorkspaceMember"
					}
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				},
				"updatedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.WorkspaceMember": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"joinedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.AddMemberRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"admin",
						"member",
						"viewer"
					]
				}
			},
			"required": [
				"email",
				"role"
			]
		},
		"taskhubsdk.UpdateMemberRoleRequest": {
			"type": "object",
			"properties": {
				"role": {
					"type": "string",
					"enum": [
						"admin",
						"member",
						"viewer"
					]
				}
			},
			"required": [
				"role"
			]
		},
		"taskhubsdk.ProjectMemberInput": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"manager",
						"contributor",
						"viewer"
					]
				}
			},
			"required": [
				"role",
				"userId"
			]
		},
		"taskhubsdk.CreateProjectRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string",
					"minLength": 3
				},
				"description": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"startDate": {
					"type": "string",
					"format": "date-time"
				},
				"dueDate": {
					"type": "string",
					"format": "date-time"
				},
				"tags": {
					"type": "string",
					"example": "backend, q3"
				},
				"members": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/taskhubsdk.ProjectMemberInput"
					}
				}
			},
			"required": [
				"title"
			]
		},
		"taskhubsdk.Project": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"workspaceId": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"startDate": {
					"type": "string",
					"format": "date-time"
				},
				"dueDate": {
					"type": "string",
					"format": "date-time"
				},
				"progress": {
					"type": "integer"
				},
				"tags": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"createdBy": {
					"type": "string"
				},
				"members": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/taskhubsdk.ProjectMember"
					}
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				},
				"updatedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.ProjectMember": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"joinedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.CreateTaskRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"priority": {
					"type": "string"
				},
				"dueDate": {
					"type": "string",
					"format": "date-time"
				},
				"assignees": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			},
			"required": [
				"title"
			]
		},
		"taskhubsdk.UpdateTaskStatusRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				}
			},
			"required": [
				"status"
			]
		},
		"taskhubsdk.Task": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"projectId": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"priority": {
					"type": "string"
				},
				"dueDate": {
					"type": "string",
					"format": "date-time"
				},
				"assignees": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"isArchived": {
					"type": "boolean"
				},
				"createdBy": {
					"type": "string"
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				},
				"updatedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"taskhubsdk.ProjectTasksResponse": {
			"type": "object",
			"properties": {
				"project": {
					"$ref": "#/definitions/taskhubsdk.Project"
				},
				"tasks": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/taskhubsdk.Task"
					}
				}
			}
		},
		"taskhubsdk.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"uptime": {
					"type": "string"
				},
				"version": {
					"type": "string"
				},
				"checks": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Session token from /auth/login. Format: \"Bearer {token}\".",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/api-v1",
	Schemes:          []string{"http", "https"},
	Title:            "TaskHub API",
	Description:      "Project and task management backend: accounts with email verification,\npassword reset and optional TOTP, workspaces, projects and tasks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
