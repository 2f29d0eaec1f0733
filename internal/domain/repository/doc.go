// Package repository define el modelo de dominio (Account, Profile, Role) y las
// interfaces de persistencia, independientes del almacenamiento subyacente.
//
// Las implementaciones concretas viven en internal/store/.
//
//	┌─────────────────────────────────────────────────────┐
//	│        providers/facebook (Provider, Flow)          │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│  AccountRepository, ProfileRepository, UnitOfWork   │
//	└─────────────────────────────────────────────────────┘
//	                 │                     │
//	                 ▼                     ▼
//	        ┌─────────────┐        ┌─────────────┐
//	        │ store/memory│        │  store/pg   │
//	        └─────────────┘        └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Las escrituras se agrupan en un UnitOfWork por intento de autenticación
//   - Errores de dominio están en errors.go
package repository
