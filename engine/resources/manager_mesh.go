package resources

import (
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
)

func (rm *Manager) GetMesh(name string) *Mesh {
	m, _, _ := rm.meshes.get(name)
	return m
}

func (rm *Manager) MeshNames() []string {
	return rm.meshes.allNames()
}

// AddMesh loads the mesh file at Resources/path in full.
func (rm *Manager) AddMesh(path, name string) error {
	absPath, name, err := rm.resolve(ResourceTypeMesh, path, name)
	if err != nil {
		return err
	}
	if rm.meshes.has(name) {
		return nameTaken(ResourceTypeMesh, name)
	}

	mesh := &Mesh{Name: name, Path: absPath}
	if err := rm.meshLoader.LoadMesh(absPath, mesh); err != nil {
		core.LogError("failed to load mesh %s: %s", absPath, err.Error())
		return fmt.Errorf("load mesh %s: %w", absPath, err)
	}
	rm.meshes.insert(name, mesh)
	core.LogDebug("mesh '%s' added (%d triangles)", name, mesh.TriangleCount())
	return nil
}

func (rm *Manager) RemoveMesh(name string) error {
	rm.meshes.remove(name)
	return nil
}

func (rm *Manager) GetTilemap(name string) *Tilemap {
	t, _, _ := rm.tilemaps.get(name)
	return t
}

func (rm *Manager) TilemapNames() []string {
	return rm.tilemaps.allNames()
}

// AddTilemap loads the tilemap file at Resources/path in full.
func (rm *Manager) AddTilemap(path, name string) error {
	absPath, name, err := rm.resolve(ResourceTypeTilemap, path, name)
	if err != nil {
		return err
	}
	if rm.tilemaps.has(name) {
		return nameTaken(ResourceTypeTilemap, name)
	}

	tilemap := &Tilemap{Name: name, Path: absPath}
	if err := rm.tilemapLoader.LoadTilemap(absPath, tilemap); err != nil {
		core.LogError("failed to load tilemap %s: %s", absPath, err.Error())
		return fmt.Errorf("load tilemap %s: %w", absPath, err)
	}
	rm.tilemaps.insert(name, tilemap)
	core.LogDebug("tilemap '%s' added (%dx%d)", name, tilemap.Width, tilemap.Height)
	return nil
}

func (rm *Manager) RemoveTilemap(name string) error {
	rm.tilemaps.remove(name)
	return nil
}
