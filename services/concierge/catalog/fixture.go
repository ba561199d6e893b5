// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

// NewFixtureStore returns a MemoryStore preloaded with a small catalog
// snapshot. Used when the service runs without a Weaviate backend and by
// integration-style tests.
func NewFixtureStore() *MemoryStore {
	s := NewMemoryStore()
	s.AddClinics(
		Clinic{
			ID: "cl-001", Name: "Antmodern Oral & Dental Health Clinic",
			City: "Antalya", Country: "Turkey", Rating: 4.8,
			Phone:   "+90 242 000 0001",
			Address: "Fener Mah. Bülent Ecevit Blv. No:50 Muratpaşa/Antalya",
			Treatments: []string{
				"Composite Bonding", "Porcelain Veneers", "Teeth Whitening",
				"Orthodontics", "Implant Dentistry", "Zirconium Crowns",
			},
		},
		Clinic{
			ID: "cl-002", Name: "Dt. Murat Özbıyık Clinic",
			City: "Antalya", Country: "Turkey", Rating: 4.7,
			Phone:   "+90 242 000 0002",
			Address: "Yeşilbahçe Mah. Metin Kasapoğlu Cad. 3/1 Muratpaşa/Antalya",
			Treatments: []string{
				"Root Canal Treatment", "Dental Implants", "Smile Restoration",
				"Invisalign", "Bone Graft",
			},
		},
		Clinic{
			ID: "cl-003", Name: "Markasya Oral & Dental Health Clinic",
			City: "Antalya", Country: "Turkey", Rating: 4.6,
			Phone:   "+90 242 000 0003",
			Address: "Toros Mah. 805 Sok. Kurgu Plaza No:14/1 Konyaaltı/Antalya",
			Treatments: []string{
				"Cosmetic Dentistry", "Periodontics", "Gum Disease Treatment",
				"Dentures", "Sedation",
			},
		},
		Clinic{
			ID: "cl-004", Name: "Dr. Gökhan Özerdem Clinic",
			City: "Antalya", Country: "Turkey", Rating: 4.9,
			Phone:   "+90 242 000 0004",
			Address: "Yeşilbahçe Mah. Metin Kasapoğlu Cad. A Blok No:48/11 Muratpaşa/Antalya",
			Treatments: []string{
				"Rhinoplasty", "Botox", "Face Lift", "Breast Surgery",
				"Liposuction", "Genioplasty",
			},
		},
		Clinic{
			ID: "cl-005", Name: "Akdeniz Hospital",
			City: "Antalya", Country: "Turkey", Rating: 4.7,
			Phone:   "+90 242 000 0005",
			Address: "Sorgun Mah. 8151 Sk. No:10 Manavgat/Antalya",
			Treatments: []string{
				"Cataract", "Glaucoma", "Retinal Diseases",
				"Intraocular Lens Implants", "Keratoplasty",
			},
		},
		Clinic{
			ID: "cl-006", Name: "İstanbul Dental Estetik",
			City: "İstanbul", Country: "Turkey", Rating: 4.5,
			Phone:   "+90 212 000 0006",
			Address: "Nişantaşı, Şişli/İstanbul",
			Treatments: []string{
				"Dental Implants", "Laminate Veneers", "Teeth Whitening",
			},
		},
	)
	s.AddHotels(
		Hotel{
			ID: "ht-001", Name: "Regnum Carya Golf & Spa Resort",
			City: "Antalya", Country: "Turkey", Type: "resort", Rating: 4.9,
			PricePerNight: 350, Description: "Belek golf ve spa resort",
			Features: []string{"Spa", "Pool", "All Inclusive", "Golf"},
			Amenities: []string{"Airport Transfer", "Fitness", "Kids Club"},
		},
		Hotel{
			ID: "ht-002", Name: "Delphin Palace",
			City: "Antalya", Country: "Turkey", Type: "resort", Rating: 4.6,
			PricePerNight: 200, Description: "Lara sahilinde her şey dahil",
			Features: []string{"Spa", "Pool", "All Inclusive", "Beach"},
			Amenities: []string{"Airport Transfer", "Aquapark"},
		},
		Hotel{
			ID: "ht-003", Name: "Barut Hotels Hemera",
			City: "Antalya", Country: "Turkey", Type: "resort", Rating: 4.4,
			PricePerNight: 150, Description: "Side merkezde her şey dahil",
			Features: []string{"Spa", "Pool", "All Inclusive"},
			Amenities: []string{"Beach"},
		},
		Hotel{
			ID: "ht-004", Name: "Sheraton Voyager Antalya",
			City: "Antalya", Country: "Turkey", Type: "city", Rating: 4.5,
			PricePerNight: 220, Description: "Konyaaltı şehir oteli",
			Features: []string{"Spa", "Pool", "Beach", "City Center"},
			Amenities: []string{"Business Center"},
		},
		Hotel{
			ID: "ht-005", Name: "DoubleTree by Hilton İstanbul",
			City: "İstanbul", Country: "Turkey", Type: "city", Rating: 4.3,
			PricePerNight: 160, Description: "Şehir merkezi iş oteli",
			Features: []string{"Pool", "City Center"},
			Amenities: []string{"Business Center", "Fitness"},
		},
	)
	return s
}
