package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"glass_gold", "Glass Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseSceneFileMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete_metadata.json",
			content: `{"name": "Glass Trio", "variant": "Hollow", "description": "Three glass spheres", "group": "Glass", "spheres": []}`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Glass Trio",
				DisplayName: "Glass Trio - Hollow",
				Description: "Three glass spheres",
				Group:       "Glass",
				Type:        "file",
				Variant:     "Hollow",
			},
		},
		{
			name:    "partial_metadata.json",
			content: `{"name": "Mirror Hall", "description": "Metal spheres"}`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Mirror Hall",
				DisplayName: "Mirror Hall",
				Description: "Metal spheres",
				Group:       fileGroup,
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"spheres": []}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata", // From filename
				DisplayName: "No Metadata",
				Group:       fileGroup,
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)

			result, err := ParseSceneFileMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneFileMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneFileMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneFileMetadata_Errors(t *testing.T) {
	if _, err := ParseSceneFileMetadata(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := writeSceneFile(t, t.TempDir(), "broken.json", `{"name": `)
	result, err := ParseSceneFileMetadata(path)
	if err == nil {
		t.Error("Expected an error for malformed JSON")
	}
	if result.ID != "file:broken" || result.DisplayName != "Broken" {
		t.Errorf("Fallback fields should still be populated, got %+v", result)
	}
}

func TestListSceneFiles(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Errorf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Missing directory should give an empty slice, got %v", scenes)
	}

	dir := t.TempDir()
	writeSceneFile(t, dir, "zeta.json", `{"name": "Zeta"}`)
	writeSceneFile(t, dir, "alpha.json", `{"name": "Alpha"}`)
	writeSceneFile(t, dir, "broken.json", `not json`)
	writeSceneFile(t, dir, "notes.txt", `ignored`)

	scenes, err = ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[0].Name != "Alpha" || scenes[1].Name != "Zeta" {
		t.Errorf("Scenes should be sorted by display name, got %q, %q", scenes[0].Name, scenes[1].Name)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "custom.json", `{"name": "Custom", "group": "Custom Group"}`)

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}

	builtIn := response.Groups[0]
	if builtIn.Name != builtinGroup {
		t.Fatalf("Built-in group should come first, got %q", builtIn.Name)
	}

	expectedScenes := []string{"default", "three-spheres", "random", "sphere-grid"}
	if len(builtIn.Scenes) != len(expectedScenes) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIn.Scenes), len(expectedScenes))
	}
	sceneIDs := make(map[string]bool)
	for _, scene := range builtIn.Scenes {
		sceneIDs[scene.ID] = true
		if scene.Type != "builtin" || scene.DisplayName == "" {
			t.Errorf("Incomplete builtin scene info %+v", scene)
		}
	}
	for _, expectedID := range expectedScenes {
		if !sceneIDs[expectedID] {
			t.Errorf("Missing expected built-in scene: %s", expectedID)
		}
	}

	custom := response.Groups[1]
	if custom.Name != "Custom Group" || len(custom.Scenes) != 1 {
		t.Fatalf("Unexpected file group %+v", custom)
	}
	if !strings.HasPrefix(custom.Scenes[0].ID, "file:") || custom.Scenes[0].FilePath == "" {
		t.Errorf("File scene should carry a file: id and a path, got %+v", custom.Scenes[0])
	}
}
