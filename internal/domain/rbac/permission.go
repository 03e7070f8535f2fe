// Package rbac evalúa permisos atómicos con formato "<modulo>.<accion>".
//
// Un conjunto de permisos concede acceso cuando:
//   - contiene el marcador "super_admin" o el comodín "*";
//   - el permiso requerido termina en ".*" y existe algún permiso del mismo módulo
//     (el módulo es el primer segmento: "report.sales.*" pertenece a "report");
//   - contiene exactamente el permiso requerido.
//
// Las funciones son puras: nunca fallan, un código desconocido simplemente no concede acceso.
package rbac

import (
	"sort"
	"strings"
)

const (
	// SuperAdmin marcador que concede cualquier permiso.
	SuperAdmin = "super_admin"
	// Wildcard comodín global.
	Wildcard = "*"
)

// HasPermission indica si held concede required.
func HasPermission(held []string, required string) bool {
	for _, p := range held {
		if p == SuperAdmin || p == Wildcard {
			return true
		}
	}
	if strings.HasSuffix(required, ".*") {
		prefix := Module(required) + "."
		for _, p := range held {
			if strings.HasPrefix(p, prefix) {
				return true
			}
		}
		return false
	}
	for _, p := range held {
		if p == required {
			return true
		}
	}
	return false
}

// HasAny indica si held concede al menos uno de required.
func HasAny(held []string, required ...string) bool {
	for _, r := range required {
		if HasPermission(held, r) {
			return true
		}
	}
	return false
}

// Module devuelve el módulo de un código (lo anterior al primer punto).
func Module(code string) string {
	module, _, _ := strings.Cut(code, ".")
	return module
}

// GroupPermissions agrupa códigos por módulo conservando el orden de entrada dentro de cada grupo.
func GroupPermissions(codes []string) map[string][]string {
	groups := make(map[string][]string)
	for _, c := range codes {
		m := Module(c)
		groups[m] = append(groups[m], c)
	}
	return groups
}

// Modules devuelve los nombres de módulo de groups ordenados alfabéticamente.
func Modules(groups map[string][]string) []string {
	out := make([]string, 0, len(groups))
	for m := range groups {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
