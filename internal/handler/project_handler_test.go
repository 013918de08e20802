package handler

import (
	"net/http"
	"testing"

	"qontrolla/internal/model"
)

func TestCreateProject(t *testing.T) {
	app := newTestApp(t)
	tenant := app.createTenant(t, "Acme", "acme-corp")
	user := app.createUser(t, tenant, "user@acme.com", "pw", false)

	rec := app.doJSON(t, http.MethodPost, "/projects", "acme-corp", app.token(t, user, tenant),
		map[string]interface{}{"name": "Website Redesign", "project_value": 15000.0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created model.Project
	if err := app.db.Where("name = ? AND tenant_id = ?", "Website Redesign", tenant.ID).First(&created).Error; err != nil {
		t.Fatalf("expected project to exist: %v", err)
	}
	if created.CreatedBy != user.ID {
		t.Errorf("expected creator %s, got %s", user.ID, created.CreatedBy)
	}
	if created.ProjectValue == nil || *created.ProjectValue != 15000.0 {
		t.Errorf("project value not stored: %v", created.ProjectValue)
	}
}

func TestCreateProjectDuplicateNameSameTenant(t *testing.T) {
	app := newTestApp(t)
	tenant := app.createTenant(t, "Acme", "acme-corp")
	user := app.createUser(t, tenant, "user@acme.com", "pw", false)
	token := app.token(t, user, tenant)

	first := app.doJSON(t, http.MethodPost, "/projects", "acme-corp", token,
		map[string]interface{}{"name": "Website Redesign"})
	if first.Code != http.StatusCreated {
		t.Fatalf("first create should succeed, got %d", first.Code)
	}

	second := app.doJSON(t, http.MethodPost, "/projects", "acme-corp", token,
		map[string]interface{}{"name": "Website Redesign"})
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", second.Code)
	}
	if decodeBody(t, second)["error"] != "Project already exists" {
		t.Errorf("unexpected error body: %s", second.Body.String())
	}
}

func TestCreateProjectSameNameOtherTenant(t *testing.T) {
	app := newTestApp(t)
	acme := app.createTenant(t, "Acme", "acme-corp")
	globex := app.createTenant(t, "Globex", "globex")
	acmeUser := app.createUser(t, acme, "user@acme.com", "pw", false)
	globexUser := app.createUser(t, globex, "user@globex.com", "pw", false)

	first := app.doJSON(t, http.MethodPost, "/projects", "acme-corp", app.token(t, acmeUser, acme),
		map[string]interface{}{"name": "Website Redesign"})
	if first.Code != http.StatusCreated {
		t.Fatalf("first create should succeed, got %d", first.Code)
	}

	// Name uniqueness is per tenant.
	second := app.doJSON(t, http.MethodPost, "/projects", "globex", app.token(t, globexUser, globex),
		map[string]interface{}{"name": "Website Redesign"})
	if second.Code != http.StatusCreated {
		t.Errorf("expected 201 in the other tenant, got %d: %s", second.Code, second.Body.String())
	}
}

func TestCreateProjectWithCategory(t *testing.T) {
	app := newTestApp(t)
	tenant := app.createTenant(t, "Acme", "acme-corp")
	user := app.createUser(t, tenant, "user@acme.com", "pw", false)
	token := app.token(t, user, tenant)

	rec := app.doJSON(t, http.MethodPost, "/projects", "acme-corp", token,
		map[string]interface{}{"name": "Website Redesign", "category": "Design"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var category model.Category
	if err := app.db.Where("name = ? AND tenant_id = ?", "Design", tenant.ID).First(&category).Error; err != nil {
		t.Fatalf("expected category to be created on the fly: %v", err)
	}

	// A second project with the same category name reuses the row.
	rec = app.doJSON(t, http.MethodPost, "/projects", "acme-corp", token,
		map[string]interface{}{"name": "Brand Refresh", "category": "Design"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	app.db.Model(&model.Category{}).Where("name = ? AND tenant_id = ?", "Design", tenant.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single Design category, got %d", count)
	}
}

func TestListProjectsScopedToTenant(t *testing.T) {
	app := newTestApp(t)
	acme := app.createTenant(t, "Acme", "acme-corp")
	globex := app.createTenant(t, "Globex", "globex")
	user := app.createUser(t, acme, "user@acme.com", "pw", false)

	app.db.Create(&model.Project{Name: "Acme Project", CreatedBy: user.ID, IsActive: true, TenantID: acme.ID})
	app.db.Create(&model.Project{Name: "Globex Project", CreatedBy: user.ID, IsActive: true, TenantID: globex.ID})

	rec := app.doJSON(t, http.MethodGet, "/projects", "acme-corp", app.token(t, user, acme), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	projects, ok := decodeBody(t, rec)["projects"].([]interface{})
	if !ok {
		t.Fatalf("expected a projects array, got %s", rec.Body.String())
	}
	if len(projects) != 1 {
		t.Errorf("expected 1 project visible to acme-corp, got %d", len(projects))
	}
}

func TestGetProjectFromOtherTenant(t *testing.T) {
	app := newTestApp(t)
	acme := app.createTenant(t, "Acme", "acme-corp")
	globex := app.createTenant(t, "Globex", "globex")
	acmeUser := app.createUser(t, acme, "user@acme.com", "pw", false)
	globexUser := app.createUser(t, globex, "user@globex.com", "pw", false)

	project := model.Project{Name: "Secret", CreatedBy: acmeUser.ID, IsActive: true, TenantID: acme.ID}
	app.db.Create(&project)

	rec := app.doJSON(t, http.MethodGet, "/projects/"+project.ID.String(), "globex", app.token(t, globexUser, globex), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 across tenants, got %d", rec.Code)
	}
}

func TestUpdateProjectStampsUpdater(t *testing.T) {
	app := newTestApp(t)
	tenant := app.createTenant(t, "Acme", "acme-corp")
	creator := app.createUser(t, tenant, "creator@acme.com", "pw", false)
	editor := app.createUser(t, tenant, "editor@acme.com", "pw", false)

	project := model.Project{Name: "Website Redesign", CreatedBy: creator.ID, IsActive: true, TenantID: tenant.ID}
	app.db.Create(&project)

	status := "in_progress"
	rec := app.doJSON(t, http.MethodPatch, "/projects/"+project.ID.String(), "acme-corp", app.token(t, editor, tenant),
		map[string]interface{}{"status_state": status})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated model.Project
	if err := app.db.First(&updated, "id = ?", project.ID).Error; err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if updated.StatusState == nil || *updated.StatusState != status {
		t.Errorf("status not updated: %v", updated.StatusState)
	}
	if updated.UpdatedBy == nil || *updated.UpdatedBy != editor.ID {
		t.Errorf("expected updater %s, got %v", editor.ID, updated.UpdatedBy)
	}
	if updated.CreatedBy != creator.ID {
		t.Errorf("creator must not change, got %s", updated.CreatedBy)
	}
}

func TestDeleteProjectIsSoft(t *testing.T) {
	app := newTestApp(t)
	tenant := app.createTenant(t, "Acme", "acme-corp")
	user := app.createUser(t, tenant, "user@acme.com", "pw", false)

	project := model.Project{Name: "Doomed", CreatedBy: user.ID, IsActive: true, TenantID: tenant.ID}
	app.db.Create(&project)

	rec := app.doJSON(t, http.MethodDelete, "/projects/"+project.ID.String(), "acme-corp", app.token(t, user, tenant), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var deleted model.Project
	if err := app.db.First(&deleted, "id = ?", project.ID).Error; err != nil {
		t.Fatalf("soft-deleted project should still be readable: %v", err)
	}
	if deleted.IsActive {
		t.Error("expected the project to be deactivated")
	}
}
